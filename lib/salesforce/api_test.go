package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restServer serves the token endpoint and records the last REST request.
type restServer struct {
	*httptest.Server
	lastMethod string
	lastPath   string
	lastQuery  string
	lastBody   []byte
}

func newRESTServer(t *testing.T, status int, responseBody string) *restServer {
	t.Helper()
	rs := &restServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/services/oauth2/token" {
			w.Write([]byte(`{"access_token":"tok-1"}`))
			return
		}
		rs.lastMethod = r.Method
		rs.lastPath = r.URL.Path
		rs.lastQuery = r.URL.RawQuery
		rs.lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))
	return rs
}

func TestQueryStripsAttributes(t *testing.T) {
	server := newRESTServer(t, 200, `{"records":[{"attributes":{"type":"Case"},"Id":"001","Subject":"help"}]}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	records, err := client.Query(context.Background(), "SELECT Id, Subject FROM Case")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "001", records[0]["Id"])
	assert.NotContains(t, records[0], "attributes")
	assert.Equal(t, "/services/data/v56.0/query", server.lastPath)
	assert.Contains(t, server.lastQuery, "q=SELECT")
}

func TestSearch(t *testing.T) {
	server := newRESTServer(t, 200, `{"searchRecords":[{"attributes":{"type":"Contact"},"Id":"003"}]}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	records, err := client.Search(context.Background(), "FIND {Smith}")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "003", records[0]["Id"])
	assert.Equal(t, "/services/data/v56.0/search", server.lastPath)
}

func TestParameterizedSearchPostsJSON(t *testing.T) {
	server := newRESTServer(t, 200, `{"searchRecords":[]}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	_, err := client.ParameterizedSearch(context.Background(), ParameterizedSearchInput{
		Q:        "5551234",
		Fields:   []string{"Id", "Name"},
		SObjects: []ParameterizedSObject{{Name: "Contact"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, server.lastMethod)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(server.lastBody, &sent))
	assert.Equal(t, "5551234", sent["q"])
}

func TestCreateReturnsID(t *testing.T) {
	server := newRESTServer(t, 201, `{"id":"a0B1","success":true}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	id, err := client.Create(context.Background(), "Attachment", map[string]interface{}{"Name": "t.json"})
	require.NoError(t, err)
	assert.Equal(t, "a0B1", id)
	assert.Equal(t, "/services/data/v56.0/sobjects/Attachment", server.lastPath)
}

func TestUpdateReturnsStatus(t *testing.T) {
	server := newRESTServer(t, 204, "")
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	status, err := client.Update(context.Background(), "Case", "001", map[string]interface{}{"Status": "Closed"})
	require.NoError(t, err)
	assert.Equal(t, 204, status)
	assert.Equal(t, http.MethodPatch, server.lastMethod)
	assert.Equal(t, "/services/data/v56.0/sobjects/Case/001", server.lastPath)
}

func TestUpsertByExternalID(t *testing.T) {
	server := newRESTServer(t, 204, "")
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	err := client.UpsertByExternalID(context.Background(), "AC_ContactTraceRecord__c", "ContactId__c", "abc-123", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "/services/data/v56.0/sobjects/AC_ContactTraceRecord__c/ContactId__c/abc-123", server.lastPath)
}

func TestDelete(t *testing.T) {
	server := newRESTServer(t, 204, "")
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	require.NoError(t, client.Delete(context.Background(), "Case", "001"))
	assert.Equal(t, http.MethodDelete, server.lastMethod)
}

func TestCreateChatterPostWithMention(t *testing.T) {
	server := newRESTServer(t, 201, `{"id":"0D51"}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	id, err := client.CreateChatterPost(context.Background(), ChatterPost{
		FeedElementType: "FeedItem",
		SubjectID:       "0051",
		MessageType:     "Text",
		Message:         "Call completed",
		Mention:         "0052",
	})
	require.NoError(t, err)
	assert.Equal(t, "0D51", id)
	assert.Equal(t, "/services/data/v56.0/chatter/feed-elements", server.lastPath)

	var sent struct {
		Body struct {
			MessageSegments []map[string]interface{} `json:"messageSegments"`
		} `json:"body"`
		FeedElementType string `json:"feedElementType"`
	}
	require.NoError(t, json.Unmarshal(server.lastBody, &sent))
	require.Len(t, sent.Body.MessageSegments, 2)
	assert.Equal(t, "Mention", sent.Body.MessageSegments[1]["type"])
	assert.Equal(t, "FeedItem", sent.FeedElementType)
}

func TestCreateChatterPostWithoutMention(t *testing.T) {
	server := newRESTServer(t, 201, `{"id":"0D52"}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	_, err := client.CreateChatterPost(context.Background(), ChatterPost{
		FeedElementType: "FeedItem",
		SubjectID:       "0051",
		MessageType:     "Text",
		Message:         "Call completed",
	})
	require.NoError(t, err)

	var sent struct {
		Body struct {
			MessageSegments []map[string]interface{} `json:"messageSegments"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(server.lastBody, &sent))
	assert.Len(t, sent.Body.MessageSegments, 1)
}

func TestFieldExists(t *testing.T) {
	server := newRESTServer(t, 200, `{"fields":[{"name":"Name"},{"name":"Region__c"}]}`)
	defer server.Close()

	client := newTestClient(t, server.URL, &fakeStore{})

	exists, err := client.FieldExists(context.Background(), "AC_QueueMetrics__c", "Region__c")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.FieldExists(context.Background(), "AC_QueueMetrics__c", "Missing__c")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFieldMap(t *testing.T) {
	fm := NewFieldMap("vendor__", "ContactId", "NonTalkTime")

	assert.Equal(t, "vendor__ContactId__c", fm.Wire("ContactId"))
	assert.Equal(t, "vendor__NonTalkTime__c", fm.Wire("NonTalkTime"))
	// Undeclared names resolve by convention.
	assert.Equal(t, "vendor__AdHoc__c", fm.Wire("AdHoc"))
	assert.Equal(t, "vendor__AC_ContactChannelAnalytics__c", fm.Object("AC_ContactChannelAnalytics"))

	bare := NewFieldMap("", "ContactId")
	assert.Equal(t, "ContactId__c", bare.Wire("ContactId"))
}

package salesforce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ChatterPost describes a feed post. Mention is optional; when set, a Mention
// segment is appended after the message segment.
type ChatterPost struct {
	FeedElementType string
	SubjectID       string
	MessageType     string
	Message         string
	Mention         string
}

func (c *Client) restPath(format string, args ...interface{}) string {
	return fmt.Sprintf("/services/data/%s/", c.Session.APIVersion()) + fmt.Sprintf(format, args...)
}

// Search runs a SOSL search and returns the matched records.
func (c *Client) Search(ctx context.Context, query string) ([]map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodGet, c.restPath("search"), nil, url.Values{"q": {query}})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var result struct {
		SearchRecords []map[string]interface{} `json:"searchRecords"`
	}
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("search: decoding response: %w", err)
	}
	return stripAttributes(result.SearchRecords), nil
}

// Query runs a SOQL query and returns the records with the per-record
// attributes block removed.
func (c *Client) Query(ctx context.Context, soql string) ([]map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodGet, c.restPath("query"), nil, url.Values{"q": {soql}})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var result struct {
		Records []map[string]interface{} `json:"records"`
	}
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("query: decoding response: %w", err)
	}
	return stripAttributes(result.Records), nil
}

// ParameterizedSearchInput is the POST body for a parameterized search.
type ParameterizedSearchInput struct {
	Q            string                   `json:"q"`
	Fields       []string                 `json:"fields,omitempty"`
	SObjects     []ParameterizedSObject   `json:"sobjects,omitempty"`
	OverallLimit int                      `json:"overallLimit,omitempty"`
}

type ParameterizedSObject struct {
	Name  string `json:"name"`
	Where string `json:"where,omitempty"`
}

// ParameterizedSearch runs a parameterized search via POST.
func (c *Client) ParameterizedSearch(ctx context.Context, input ParameterizedSearchInput) ([]map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodPost, c.restPath("parameterizedSearch"), input, nil)
	if err != nil {
		return nil, fmt.Errorf("parameterized search: %w", err)
	}

	var result struct {
		SearchRecords []map[string]interface{} `json:"searchRecords"`
	}
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("parameterized search: decoding response: %w", err)
	}
	return stripAttributes(result.SearchRecords), nil
}

// Create inserts a record and returns its id.
func (c *Client) Create(ctx context.Context, sobject string, data map[string]interface{}) (string, error) {
	resp, err := c.Do(ctx, http.MethodPost, c.restPath("sobjects/%s", sobject), data, nil)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", sobject, err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&result); err != nil {
		return "", fmt.Errorf("creating %s: decoding response: %w", sobject, err)
	}
	return result.ID, nil
}

// Update patches a record by id and returns the response status code.
func (c *Client) Update(ctx context.Context, sobject, id string, data map[string]interface{}) (int, error) {
	resp, err := c.Do(ctx, http.MethodPatch, c.restPath("sobjects/%s/%s", sobject, id), data, nil)
	if err != nil {
		return 0, fmt.Errorf("updating %s %s: %w", sobject, id, err)
	}
	return resp.StatusCode, nil
}

// UpsertByExternalID creates or updates the record identified by the given
// external-id field value.
func (c *Client) UpsertByExternalID(ctx context.Context, sobject, field, externalID string, data map[string]interface{}) error {
	_, err := c.Do(ctx, http.MethodPatch, c.restPath("sobjects/%s/%s/%s", sobject, field, url.PathEscape(externalID)), data, nil)
	if err != nil {
		return fmt.Errorf("upserting %s by %s=%s: %w", sobject, field, externalID, err)
	}
	return nil
}

// AttachFile creates an Attachment on the given parent record. Body is the
// base64-encoded file content.
func (c *Client) AttachFile(ctx context.Context, name, contentType, description, parentID, body string) (string, error) {
	return c.Create(ctx, "Attachment", map[string]interface{}{
		"Name":        name,
		"ContentType": contentType,
		"Description": description,
		"ParentId":    parentID,
		"Body":        body,
	})
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, sobject, id string) error {
	_, err := c.Do(ctx, http.MethodDelete, c.restPath("sobjects/%s/%s", sobject, id), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", sobject, id, err)
	}
	return nil
}

// CreateChatterPost publishes a feed post and returns the feed element id.
func (c *Client) CreateChatterPost(ctx context.Context, post ChatterPost) (string, error) {
	segments := []map[string]interface{}{
		{"type": post.MessageType, "text": post.Message},
	}
	if post.Mention != "" {
		segments = append(segments, map[string]interface{}{"type": "Mention", "id": post.Mention})
	}
	body := map[string]interface{}{
		"body":            map[string]interface{}{"messageSegments": segments},
		"feedElementType": post.FeedElementType,
		"subjectId":       post.SubjectID,
	}

	resp, err := c.Do(ctx, http.MethodPost, c.restPath("chatter/feed-elements"), body, nil)
	if err != nil {
		return "", fmt.Errorf("creating chatter post: %w", err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&result); err != nil {
		return "", fmt.Errorf("creating chatter post: decoding response: %w", err)
	}
	return result.ID, nil
}

// CreateChatterComment adds a comment to an existing feed element.
func (c *Client) CreateChatterComment(ctx context.Context, feedElementID, commentType, message string) (string, error) {
	body := map[string]interface{}{
		"body": map[string]interface{}{
			"messageSegments": []map[string]interface{}{
				{"type": commentType, "text": message},
			},
		},
	}

	resp, err := c.Do(ctx, http.MethodPost, c.restPath("chatter/feed-elements/%s/capabilities/comments/items", feedElementID), body, nil)
	if err != nil {
		return "", fmt.Errorf("creating chatter comment: %w", err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&result); err != nil {
		return "", fmt.Errorf("creating chatter comment: decoding response: %w", err)
	}
	return result.ID, nil
}

// FieldExists reports whether the sobject declares the given field. Used to
// gate optional fields (e.g. region) that only some orgs have installed.
func (c *Client) FieldExists(ctx context.Context, sobject, field string) (bool, error) {
	resp, err := c.Do(ctx, http.MethodGet, c.restPath("sobjects/%s/describe", sobject), nil, nil)
	if err != nil {
		return false, fmt.Errorf("describing %s: %w", sobject, err)
	}

	var result struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := resp.JSON(&result); err != nil {
		return false, fmt.Errorf("describing %s: decoding response: %w", sobject, err)
	}

	for _, f := range result.Fields {
		if f.Name == field {
			return true, nil
		}
	}
	return false, nil
}

func stripAttributes(records []map[string]interface{}) []map[string]interface{} {
	for _, record := range records {
		delete(record, "attributes")
	}
	return records
}

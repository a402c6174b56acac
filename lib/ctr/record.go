// Package ctr maps contact trace records from the contact-center event
// stream into the CRM upsert payload.
package ctr

import (
	"encoding/json"

	"crmsync/lib/salesforce"
)

// Record is the contact trace record as it arrives on the event stream.
// Optional sub-objects are pointers; absent ones contribute no fields.
type Record struct {
	AWSAccountID               string            `json:"AWSAccountId"`
	ContactID                  string            `json:"ContactId"`
	InitialContactID           string            `json:"InitialContactId"`
	NextContactID              string            `json:"NextContactId"`
	PreviousContactID          string            `json:"PreviousContactId"`
	InstanceARN                string            `json:"InstanceARN"`
	Channel                    string            `json:"Channel"`
	InitiationMethod           string            `json:"InitiationMethod"`
	InitiationTimestamp        string            `json:"InitiationTimestamp"`
	ConnectedToSystemTimestamp string            `json:"ConnectedToSystemTimestamp"`
	LastUpdateTimestamp        string            `json:"LastUpdateTimestamp"`
	DisconnectReason           string            `json:"DisconnectReason"`
	DisconnectTimestamp        string            `json:"DisconnectTimestamp"`
	TransferCompletedTimestamp string            `json:"TransferCompletedTimestamp"`
	AgentConnectionAttempts    int               `json:"AgentConnectionAttempts"`
	Attributes                 map[string]string `json:"Attributes"`
	ContactDetails             map[string]string `json:"ContactDetails"`
	References                 json.RawMessage   `json:"References"`

	Agent                 *Agent    `json:"Agent"`
	Queue                 *Queue    `json:"Queue"`
	Recording             *Recording `json:"Recording"`
	CustomerEndpoint      *Endpoint `json:"CustomerEndpoint"`
	SystemEndpoint        *Endpoint `json:"SystemEndpoint"`
	TransferredToEndpoint *Endpoint `json:"TransferredToEndpoint"`
}

type Agent struct {
	Username                      string          `json:"Username"`
	ConnectedToAgentTimestamp     string          `json:"ConnectedToAgentTimestamp"`
	AgentInteractionDuration      int             `json:"AgentInteractionDuration"`
	AfterContactWorkDuration      int             `json:"AfterContactWorkDuration"`
	AfterContactWorkStartTimestamp string         `json:"AfterContactWorkStartTimestamp"`
	AfterContactWorkEndTimestamp  string          `json:"AfterContactWorkEndTimestamp"`
	CustomerHoldDuration          int             `json:"CustomerHoldDuration"`
	LongestHoldDuration           int             `json:"LongestHoldDuration"`
	NumberOfHolds                 int             `json:"NumberOfHolds"`
	HierarchyGroups               json.RawMessage `json:"HierarchyGroups"`
	RoutingProfile                *RoutingProfile `json:"RoutingProfile"`
}

type RoutingProfile struct {
	ARN  string `json:"ARN"`
	Name string `json:"Name"`
}

type Queue struct {
	ARN              string `json:"ARN"`
	Name             string `json:"Name"`
	Duration         int    `json:"Duration"`
	EnqueueTimestamp string `json:"EnqueueTimestamp"`
	DequeueTimestamp string `json:"DequeueTimestamp"`
}

type Recording struct {
	Location       string `json:"Location"`
	Status         string `json:"Status"`
	DeletionReason string `json:"DeletionReason"`
}

type Endpoint struct {
	Address string `json:"Address"`
}

// ImportEnabled reports whether the contact flow opted this record into CRM
// import via the postcallCTRImportEnabled attribute.
func (r *Record) ImportEnabled() bool {
	return r.Attributes["postcallCTRImportEnabled"] == "true"
}

// Payload renders the record as the CRM upsert payload. Absent sub-objects
// contribute nothing; JSON-valued fields (attributes, hierarchy groups,
// references) are serialized into long-text fields.
func (r *Record) Payload(fields salesforce.FieldMap) map[string]interface{} {
	payload := map[string]interface{}{
		fields.Wire("AWSAccountId"):               r.AWSAccountID,
		fields.Wire("AgentConnectionAttempts"):    r.AgentConnectionAttempts,
		fields.Wire("Channel"):                    r.Channel,
		fields.Wire("ConnectedToSystemTimestamp"): r.ConnectedToSystemTimestamp,
		fields.Wire("InitiationTimestamp"):        r.InitiationTimestamp,
		fields.Wire("InitialContactId"):           r.InitialContactID,
		fields.Wire("Initiation_Method"):          r.InitiationMethod,
		fields.Wire("InstanceARN"):                r.InstanceARN,
		fields.Wire("LastUpdateTimestamp"):        r.LastUpdateTimestamp,
		fields.Wire("NextContactId"):              r.NextContactID,
		fields.Wire("PreviousContactId"):          r.PreviousContactID,
		fields.Wire("DisconnectReason"):           r.DisconnectReason,
		fields.Wire("DisconnectTimestamp"):        r.DisconnectTimestamp,
	}

	if r.Attributes != nil {
		payload[fields.Wire("Attributes")] = marshalString(r.Attributes)
	}
	if r.ContactDetails != nil {
		payload[fields.Wire("ContactDetails")] = marshalString(r.ContactDetails)
	}
	if len(r.References) > 0 && string(r.References) != "null" {
		payload[fields.Wire("References")] = string(r.References)
	}

	if agent := r.Agent; agent != nil {
		payload[fields.Wire("AgentUsername")] = agent.Username
		payload[fields.Wire("AgentConnectedToAgentTimestamp")] = agent.ConnectedToAgentTimestamp
		payload[fields.Wire("AgentInteractionDuration")] = agent.AgentInteractionDuration
		payload[fields.Wire("AfterContactWorkDuration")] = agent.AfterContactWorkDuration
		payload[fields.Wire("AfterContactWorkStartTimestamp")] = agent.AfterContactWorkStartTimestamp
		payload[fields.Wire("AfterContactWorkEndTimestamp")] = agent.AfterContactWorkEndTimestamp
		payload[fields.Wire("AgentCustomerHoldDuration")] = agent.CustomerHoldDuration
		payload[fields.Wire("AgentLongestHoldDuration")] = agent.LongestHoldDuration
		payload[fields.Wire("AgentNumberOfHolds")] = agent.NumberOfHolds
		if len(agent.HierarchyGroups) > 0 && string(agent.HierarchyGroups) != "null" {
			payload[fields.Wire("AgentHierarchyGroup")] = string(agent.HierarchyGroups)
		}
		if agent.RoutingProfile != nil {
			payload[fields.Wire("AgentRoutingProfileARN")] = agent.RoutingProfile.ARN
			payload[fields.Wire("AgentRoutingProfileName")] = agent.RoutingProfile.Name
		}
	}

	if queue := r.Queue; queue != nil {
		payload[fields.Wire("QueueARN")] = queue.ARN
		payload[fields.Wire("QueueName")] = queue.Name
		payload[fields.Wire("QueueDuration")] = queue.Duration
		payload[fields.Wire("QueueEnqueueTimestamp")] = queue.EnqueueTimestamp
		payload[fields.Wire("QueueDequeueTimestamp")] = queue.DequeueTimestamp
	}

	if recording := r.Recording; recording != nil {
		payload[fields.Wire("RecordingLocation")] = recording.Location
		payload[fields.Wire("RecordingStatus")] = recording.Status
		payload[fields.Wire("RecordingDeletionReason")] = recording.DeletionReason
	}

	if r.CustomerEndpoint != nil {
		payload[fields.Wire("CustomerEndpointAddress")] = r.CustomerEndpoint.Address
	}
	if r.SystemEndpoint != nil {
		payload[fields.Wire("SystemEndpointAddress")] = r.SystemEndpoint.Address
	}
	if r.TransferredToEndpoint != nil {
		payload[fields.Wire("TransferredToEndpoint")] = r.TransferredToEndpoint.Address
	}
	if r.TransferCompletedTimestamp != "" {
		payload[fields.Wire("TransferCompletedTimestamp")] = r.TransferCompletedTimestamp
	}

	return payload
}

func marshalString(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

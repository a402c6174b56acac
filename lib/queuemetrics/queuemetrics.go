// Package queuemetrics shapes real-time queue metric snapshots into CRM
// upsert records keyed by queue id.
package queuemetrics

import (
	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"

	"crmsync/lib/salesforce"
)

// counterFields maps each requested metric to its CRM field. Every counter
// is written on each snapshot; metrics the API omits are reported as 0 so a
// queue that drains shows zeros instead of stale values.
var counterFields = map[connecttypes.CurrentMetricName]string{
	connecttypes.CurrentMetricNameAgentsAfterContactWork: "Agents_After_Contact_Work",
	connecttypes.CurrentMetricNameAgentsAvailable:        "Agents_Available",
	connecttypes.CurrentMetricNameAgentsError:            "Agents_Error",
	connecttypes.CurrentMetricNameAgentsNonProductive:    "Agents_Non_Productive",
	connecttypes.CurrentMetricNameAgentsOnContact:        "Agents_On_Call",
	connecttypes.CurrentMetricNameAgentsOnline:           "Agents_Online",
	connecttypes.CurrentMetricNameAgentsStaffed:          "Agents_Staffed",
	connecttypes.CurrentMetricNameContactsInQueue:        "Contacts_In_Queue",
	connecttypes.CurrentMetricNameOldestContactAge:       "Oldest_Contact_Age",
	connecttypes.CurrentMetricNameContactsScheduled:      "Contacts_Scheduled",
}

// CurrentMetrics returns the metric set requested from the real-time API.
func CurrentMetrics() []connecttypes.CurrentMetric {
	metrics := make([]connecttypes.CurrentMetric, 0, len(counterFields))
	for name := range counterFields {
		unit := connecttypes.UnitCount
		if name == connecttypes.CurrentMetricNameOldestContactAge {
			unit = connecttypes.UnitSeconds
		}
		metrics = append(metrics, connecttypes.CurrentMetric{Name: name, Unit: unit})
	}
	return metrics
}

// Record is one queue's snapshot ready for upsert.
type Record struct {
	QueueID  string
	QueueARN string
	Name     string
	Counters map[string]int
}

// BuildRecord converts one metric result into a Record. Queue names come
// from the id-to-name map built while listing queues. Results without a
// queue dimension are skipped.
func BuildRecord(result connecttypes.CurrentMetricResult, queueNames map[string]string) (Record, bool) {
	if result.Dimensions == nil || result.Dimensions.Queue == nil || result.Dimensions.Queue.Id == nil {
		return Record{}, false
	}

	record := Record{
		QueueID:  *result.Dimensions.Queue.Id,
		Counters: make(map[string]int, len(counterFields)),
	}
	if result.Dimensions.Queue.Arn != nil {
		record.QueueARN = *result.Dimensions.Queue.Arn
	}
	record.Name = queueNames[record.QueueID]

	for _, collection := range result.Collections {
		if collection.Metric == nil || collection.Value == nil {
			continue
		}
		field, ok := counterFields[collection.Metric.Name]
		if !ok {
			continue
		}
		record.Counters[field] = int(*collection.Value)
	}
	return record, true
}

// Payload renders the record for upsert. The queue name goes to the standard
// Name field; all counters are present, defaulting to 0.
func (r Record) Payload(fields salesforce.FieldMap) map[string]interface{} {
	payload := map[string]interface{}{
		"Name":                    r.Name,
		fields.Wire("Queue_ARN"): r.QueueARN,
	}
	for _, field := range counterFields {
		payload[fields.Wire(field)] = r.Counters[field]
	}
	return payload
}

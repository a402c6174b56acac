package queuemetrics

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/lib/salesforce"
)

func metricResult(queueID, queueARN string, values map[connecttypes.CurrentMetricName]float64) connecttypes.CurrentMetricResult {
	result := connecttypes.CurrentMetricResult{
		Dimensions: &connecttypes.Dimensions{
			Queue: &connecttypes.QueueReference{
				Id:  aws.String(queueID),
				Arn: aws.String(queueARN),
			},
		},
	}
	for name, value := range values {
		result.Collections = append(result.Collections, connecttypes.CurrentMetricData{
			Metric: &connecttypes.CurrentMetric{Name: name},
			Value:  aws.Float64(value),
		})
	}
	return result
}

func TestCurrentMetricsCoversAllCounters(t *testing.T) {
	metrics := CurrentMetrics()

	assert.Len(t, metrics, 10)
	for _, metric := range metrics {
		if metric.Name == connecttypes.CurrentMetricNameOldestContactAge {
			assert.Equal(t, connecttypes.UnitSeconds, metric.Unit)
		} else {
			assert.Equal(t, connecttypes.UnitCount, metric.Unit)
		}
	}
}

func TestBuildRecord(t *testing.T) {
	// Arrange
	names := map[string]string{"q-1": "Support"}
	result := metricResult("q-1", "arn:queue:q-1", map[connecttypes.CurrentMetricName]float64{
		connecttypes.CurrentMetricNameAgentsOnline:    4,
		connecttypes.CurrentMetricNameContactsInQueue: 2,
	})

	// Act
	record, ok := BuildRecord(result, names)

	// Assert
	require.True(t, ok)
	assert.Equal(t, "q-1", record.QueueID)
	assert.Equal(t, "arn:queue:q-1", record.QueueARN)
	assert.Equal(t, "Support", record.Name)
	assert.Equal(t, 4, record.Counters["Agents_Online"])
	assert.Equal(t, 2, record.Counters["Contacts_In_Queue"])
}

func TestBuildRecordSkipsMissingQueueDimension(t *testing.T) {
	_, ok := BuildRecord(connecttypes.CurrentMetricResult{}, nil)
	assert.False(t, ok)
}

func TestPayloadDefaultsMissingCountersToZero(t *testing.T) {
	record := Record{
		QueueID:  "q-2",
		QueueARN: "arn:queue:q-2",
		Name:     "Sales",
		Counters: map[string]int{"Agents_Online": 3},
	}
	fields := salesforce.NewFieldMap("ns__")

	payload := record.Payload(fields)

	assert.Equal(t, "Sales", payload["Name"])
	assert.Equal(t, "arn:queue:q-2", payload["ns__Queue_ARN__c"])
	assert.Equal(t, 3, payload["ns__Agents_Online__c"])
	assert.Equal(t, 0, payload["ns__Agents_Error__c"])
	assert.Equal(t, 0, payload["ns__Oldest_Contact_Age__c"])
	assert.Equal(t, 0, payload["ns__Contacts_Scheduled__c"])
	assert.Len(t, payload, 12)
}

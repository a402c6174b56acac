package queuemetrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	connecttypes "github.com/aws/aws-sdk-go-v2/service/connect/types"
	"github.com/sirupsen/logrus"
)

// ConnectAPI is the slice of the contact center client the collector uses.
type ConnectAPI interface {
	ListQueues(ctx context.Context, params *connect.ListQueuesInput, optFns ...func(*connect.Options)) (*connect.ListQueuesOutput, error)
	GetCurrentMetricData(ctx context.Context, params *connect.GetCurrentMetricDataInput, optFns ...func(*connect.Options)) (*connect.GetCurrentMetricDataOutput, error)
}

// Collector pages through an instance's standard queues and their real-time
// metrics.
type Collector struct {
	API        ConnectAPI
	Logger     *logrus.Logger
	InstanceID string

	// Page sizes for the list and metric calls.
	QueueMaxResults  int32
	MetricMaxResults int32
}

// Collect returns one Record per standard queue with current metric data.
func (c *Collector) Collect(ctx context.Context) ([]Record, error) {
	names, ids, err := c.listQueues(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.Logger.WithField("instance_id", c.InstanceID).Info("No queues found")
		return nil, nil
	}

	var records []Record
	var nextToken *string
	for {
		out, err := c.API.GetCurrentMetricData(ctx, &connect.GetCurrentMetricDataInput{
			InstanceId: aws.String(c.InstanceID),
			Filters: &connecttypes.Filters{
				Channels: []connecttypes.Channel{
					connecttypes.ChannelVoice,
					connecttypes.ChannelChat,
					connecttypes.ChannelTask,
				},
				Queues: ids,
			},
			Groupings:      []connecttypes.Grouping{connecttypes.GroupingQueue},
			CurrentMetrics: CurrentMetrics(),
			MaxResults:     aws.Int32(c.MetricMaxResults),
			NextToken:      nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching current metric data: %w", err)
		}

		for _, result := range out.MetricResults {
			if record, ok := BuildRecord(result, names); ok {
				records = append(records, record)
			}
		}

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		nextToken = out.NextToken
	}
	return records, nil
}

func (c *Collector) listQueues(ctx context.Context) (map[string]string, []string, error) {
	names := map[string]string{}
	var ids []string

	var nextToken *string
	for {
		out, err := c.API.ListQueues(ctx, &connect.ListQueuesInput{
			InstanceId: aws.String(c.InstanceID),
			QueueTypes: []connecttypes.QueueType{connecttypes.QueueTypeStandard},
			MaxResults: aws.Int32(c.QueueMaxResults),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("listing queues: %w", err)
		}

		for _, queue := range out.QueueSummaryList {
			if queue.Id == nil {
				continue
			}
			ids = append(ids, *queue.Id)
			if queue.Name != nil {
				names[*queue.Id] = *queue.Name
			}
		}

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		nextToken = out.NextToken
	}
	return names, ids, nil
}

// Package comprehend runs natural-language analysis over call transcripts
// and formats the results for CRM text fields.
package comprehend

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscomprehend "github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/sirupsen/logrus"
)

// maxFieldLength caps formatted list output so it fits a CRM long-text
// field with headroom for the record's other fields.
const maxFieldLength = 131000

// API is the subset of the analysis service the analyzer calls.
type API interface {
	DetectSentiment(ctx context.Context, params *awscomprehend.DetectSentimentInput, optFns ...func(*awscomprehend.Options)) (*awscomprehend.DetectSentimentOutput, error)
	DetectKeyPhrases(ctx context.Context, params *awscomprehend.DetectKeyPhrasesInput, optFns ...func(*awscomprehend.Options)) (*awscomprehend.DetectKeyPhrasesOutput, error)
	DetectEntities(ctx context.Context, params *awscomprehend.DetectEntitiesInput, optFns ...func(*awscomprehend.Options)) (*awscomprehend.DetectEntitiesOutput, error)
}

// Analyzer wraps the analysis client with transcript-oriented helpers.
type Analyzer struct {
	API    API
	Logger *logrus.Logger
}

func NewAnalyzer(api API, logger *logrus.Logger) *Analyzer {
	return &Analyzer{API: api, Logger: logger}
}

// Sentiment classifies the text and returns "LABEL, score" where score is
// the probability of the winning label.
func (a *Analyzer) Sentiment(ctx context.Context, text, languageCode string) (string, error) {
	out, err := a.API.DetectSentiment(ctx, &awscomprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCode(languageCode),
	})
	if err != nil {
		return "", fmt.Errorf("detecting sentiment: %w", err)
	}
	return FormatSentiment(out), nil
}

// KeyPhrases returns the detected key phrases as a comma-joined list.
func (a *Analyzer) KeyPhrases(ctx context.Context, text, languageCode string) (string, error) {
	out, err := a.API.DetectKeyPhrases(ctx, &awscomprehend.DetectKeyPhrasesInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCode(languageCode),
	})
	if err != nil {
		return "", fmt.Errorf("detecting key phrases: %w", err)
	}
	return FormatKeyPhrases(out), nil
}

// Entities returns the detected named entities as a comma-joined list of
// "Text:Type" pairs.
func (a *Analyzer) Entities(ctx context.Context, text, languageCode string) (string, error) {
	out, err := a.API.DetectEntities(ctx, &awscomprehend.DetectEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCode(languageCode),
	})
	if err != nil {
		return "", fmt.Errorf("detecting entities: %w", err)
	}
	return FormatEntities(out), nil
}

// FormatSentiment renders the sentiment label with the score of that label.
func FormatSentiment(out *awscomprehend.DetectSentimentOutput) string {
	var score float32
	if out.SentimentScore != nil {
		switch out.Sentiment {
		case comprehendtypes.SentimentTypePositive:
			score = deref(out.SentimentScore.Positive)
		case comprehendtypes.SentimentTypeNegative:
			score = deref(out.SentimentScore.Negative)
		case comprehendtypes.SentimentTypeNeutral:
			score = deref(out.SentimentScore.Neutral)
		case comprehendtypes.SentimentTypeMixed:
			score = deref(out.SentimentScore.Mixed)
		}
	}
	return fmt.Sprintf("%s, %v", out.Sentiment, score)
}

// FormatKeyPhrases joins phrases with ", ", stopping before the output
// would exceed the field cap.
func FormatKeyPhrases(out *awscomprehend.DetectKeyPhrasesOutput) string {
	phrases := make([]string, 0, len(out.KeyPhrases))
	for _, phrase := range out.KeyPhrases {
		if phrase.Text == nil {
			continue
		}
		if joinedLen(phrases)+len(*phrase.Text) > maxFieldLength {
			break
		}
		phrases = append(phrases, *phrase.Text)
	}
	return strings.Join(phrases, ", ")
}

// FormatEntities joins "Text:Type" pairs with ", ", stopping before the
// output would exceed the field cap.
func FormatEntities(out *awscomprehend.DetectEntitiesOutput) string {
	entities := make([]string, 0, len(out.Entities))
	for _, entity := range out.Entities {
		if entity.Text == nil {
			continue
		}
		pair := *entity.Text + ":" + string(entity.Type)
		if joinedLen(entities)+len(pair) > maxFieldLength {
			break
		}
		entities = append(entities, pair)
	}
	return strings.Join(entities, ", ")
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := (len(parts) - 1) * 2
	for _, p := range parts {
		n += len(p)
	}
	return n
}

func deref(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}

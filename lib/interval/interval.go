// Package interval parses scheduled historical metrics reports exported as
// CSV and shapes each row into a CRM upsert payload keyed by a deterministic
// record id, so re-delivered reports overwrite instead of duplicate.
package interval

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"

	"crmsync/lib/salesforce"
)

var (
	labelSeparators = regexp.MustCompile(`[-\s]+`)
	idSanitizer     = regexp.MustCompile(`[-\s\W]+`)
)

// Row is one report line ready for upsert. RecordID is the external id the
// upsert keys on.
type Row struct {
	RecordID string
	Fields   map[string]interface{}
}

// ParseQueueReport converts a queue historical metrics CSV into upsert rows.
// The "Queue" column becomes the object name field and the record id is the
// sanitized queue name concatenated with the start interval.
func ParseQueueReport(data, eventTime string, fields salesforce.FieldMap) ([]Row, error) {
	return parseReport(data, eventTime, fields, "queue", func(f map[string]interface{}) string {
		name, _ := f[fields.Wire("AC_Object_Name")].(string)
		return idSanitizer.ReplaceAllString(name, "")
	})
}

// ParseAgentReport converts an agent performance CSV into upsert rows. The
// "Agent" column becomes the object name field; the record id uses the agent
// name as-is.
func ParseAgentReport(data, eventTime string, fields salesforce.FieldMap) ([]Row, error) {
	return parseReport(data, eventTime, fields, "agent", func(f map[string]interface{}) string {
		name, _ := f[fields.Wire("AC_Object_Name")].(string)
		return name
	})
}

func parseReport(data, eventTime string, fields salesforce.FieldMap, objectColumn string, idName func(map[string]interface{}) string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, line := range records[1:] {
		if len(line) == 0 || (len(line) == 1 && line[0] == "") {
			continue
		}
		payload := make(map[string]interface{}, len(header)+1)
		for i, label := range header {
			if i >= len(line) {
				break
			}
			payload[parseLabel(label, objectColumn, fields)] = parseValue(line[i])
		}
		payload[fields.Wire("Created_Date")] = eventTime

		start, _ := payload[fields.Wire("StartInterval")].(string)
		rows = append(rows, Row{
			RecordID: idName(payload) + start,
			Fields:   payload,
		})
	}
	return rows, nil
}

// parseLabel maps a CSV column header to its CRM field name. The object
// column and the over-long interaction-and-hold label have fixed names;
// everything else is the header with separators collapsed to underscores.
func parseLabel(label, objectColumn string, fields salesforce.FieldMap) string {
	switch strings.ToLower(label) {
	case "average agent interaction and customer hold time":
		return fields.Wire("Avg_agent_interaction_and_cust_hold_time")
	case objectColumn:
		return fields.Wire("AC_Object_Name")
	}
	return fields.Wire(labelSeparators.ReplaceAllString(label, "_"))
}

// parseValue strips percent signs and maps empty cells to nil so the CRM
// leaves those fields unset.
func parseValue(value string) interface{} {
	if value == "" {
		return nil
	}
	return strings.ReplaceAll(value, "%", "")
}

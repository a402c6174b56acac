// Package flowapi executes CRM operations requested by contact flows. Each
// invocation names an operation in the sf_operation parameter; the remaining
// parameters are operation-specific, with reserved sf_* keys separated from
// free-form field and placeholder values.
package flowapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"crmsync/lib/salesforce"
	"crmsync/lib/util"
)

// Dispatcher routes contact flow operations to the CRM client.
type Dispatcher struct {
	SF     *salesforce.Client
	Logger *logrus.Logger
}

// Dispatch executes one named operation with the given parameters.
func (d *Dispatcher) Dispatch(ctx context.Context, operation string, params map[string]string) (map[string]interface{}, error) {
	switch operation {
	case "lookup":
		return d.lookup(ctx, params)
	case "lookup_all":
		return d.lookupAll(ctx, params)
	case "create":
		return d.create(ctx, params)
	case "update":
		return d.update(ctx, params)
	case "delete":
		return d.delete(ctx, params)
	case "phoneLookup":
		return d.phoneLookup(ctx, params["sf_phone"], params["sf_fields"])
	case "query":
		return d.query(ctx, params)
	case "queryOne":
		return d.queryOne(ctx, params)
	case "search":
		return d.search(ctx, params)
	case "searchOne":
		return d.searchOne(ctx, params)
	case "createChatterPost":
		return d.createChatterPost(ctx, params)
	case "createChatterComment":
		return d.createChatterComment(ctx, params)
	}
	return nil, fmt.Errorf("sf_operation unknown: %q", operation)
}

func (d *Dispatcher) lookup(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	sobject := params["sf_object"]
	fields := params["sf_fields"]
	conditions := extraParams(params, "sf_object", "sf_fields")

	soql := fmt.Sprintf("SELECT %s FROM %s WHERE %s", fields, sobject, whereClause(conditions))
	records, err := d.SF.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	return firstWithCount(records), nil
}

func (d *Dispatcher) lookupAll(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	sobject := params["sf_object"]
	fields := params["sf_fields"]
	conditions := extraParams(params, "sf_object", "sf_fields")

	soql := fmt.Sprintf("SELECT %s FROM %s", fields, sobject)
	if len(conditions) > 0 {
		soql += " WHERE " + whereClause(conditions)
	}
	records, err := d.SF.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"sf_records": records,
		"sf_count":   len(records),
	}, nil
}

func (d *Dispatcher) create(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	sobject := params["sf_object"]
	data, err := expandValues(extraParams(params, "sf_object"))
	if err != nil {
		return nil, err
	}

	id, err := d.SF.Create(ctx, sobject, data)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Id": id}, nil
}

func (d *Dispatcher) update(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	sobject := params["sf_object"]
	id := params["sf_id"]
	data, err := expandValues(extraParams(params, "sf_object", "sf_id"))
	if err != nil {
		return nil, err
	}

	status, err := d.SF.Update(ctx, sobject, id, data)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Status": status}, nil
}

func (d *Dispatcher) delete(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	if err := d.SF.Delete(ctx, params["sf_object"], params["sf_id"]); err != nil {
		return nil, err
	}
	return map[string]interface{}{"Response": "Deleted"}, nil
}

func (d *Dispatcher) phoneLookup(ctx context.Context, phone, fields string) (map[string]interface{}, error) {
	national, err := nationalNumber(phone)
	if err != nil {
		return nil, err
	}

	records, err := d.SF.ParameterizedSearch(ctx, salesforce.ParameterizedSearchInput{
		Q:        national,
		Fields:   strings.Split(fields, ", "),
		SObjects: []salesforce.ParameterizedSObject{{Name: "Contact"}},
	})
	if err != nil {
		return nil, err
	}
	return firstWithCount(records), nil
}

func (d *Dispatcher) query(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	soql := substitute(params["query"], extraParams(params, "query"))
	records, err := d.SF.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	return recordListWithCount(records), nil
}

func (d *Dispatcher) queryOne(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	soql := substitute(params["query"], extraParams(params, "query"))
	records, err := d.SF.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	return singleWithCount(records), nil
}

func (d *Dispatcher) search(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	input, err := searchInput(params, true)
	if err != nil {
		return nil, err
	}
	records, err := d.SF.ParameterizedSearch(ctx, input)
	if err != nil {
		return nil, err
	}
	return recordListWithCount(records), nil
}

func (d *Dispatcher) searchOne(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	input, err := searchInput(params, false)
	if err != nil {
		return nil, err
	}
	records, err := d.SF.ParameterizedSearch(ctx, input)
	if err != nil {
		return nil, err
	}
	return singleWithCount(records), nil
}

func (d *Dispatcher) createChatterPost(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	kwargs := extraParams(params, "sf_feedElementType", "sf_subjectId", "sf_messageType", "sf_message")
	id, err := d.SF.CreateChatterPost(ctx, salesforce.ChatterPost{
		FeedElementType: params["sf_feedElementType"],
		SubjectID:       params["sf_subjectId"],
		MessageType:     params["sf_messageType"],
		Message:         substitute(params["sf_message"], kwargs),
		Mention:         params["sf_mention"],
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Id": id}, nil
}

func (d *Dispatcher) createChatterComment(ctx context.Context, params map[string]string) (map[string]interface{}, error) {
	kwargs := extraParams(params, "sf_feedElementId", "sf_commentType", "sf_commentMessage")
	message := substitute(params["sf_commentMessage"], kwargs)
	id, err := d.SF.CreateChatterComment(ctx, params["sf_feedElementId"], params["sf_commentType"], message)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Id": id}, nil
}

func searchInput(params map[string]string, limited bool) (salesforce.ParameterizedSearchInput, error) {
	sobject := salesforce.ParameterizedSObject{Name: params["sf_object"]}
	if where := params["where"]; where != "" {
		sobject.Where = where
	}

	input := salesforce.ParameterizedSearchInput{
		Q:        params["q"],
		Fields:   strings.Split(params["sf_fields"], ", "),
		SObjects: []salesforce.ParameterizedSObject{sobject},
	}
	if limited {
		input.OverallLimit = 100
		if raw := params["overallLimit"]; raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				return input, fmt.Errorf("invalid overallLimit %q: %w", raw, err)
			}
			input.OverallLimit = limit
		}
	}
	return input, nil
}

// whereClause joins the condition parameters with AND. Phone number fields
// match on the last ten digits in 3-3-4 groups so formatting differences
// between the carrier and the CRM do not break the lookup.
func whereClause(conditions map[string]string) string {
	clauses := make([]string, 0, len(conditions))
	for key, value := range conditions {
		switch {
		case isPhoneField(key) && len(value) >= 10:
			digits := value[len(value)-10:]
			clauses = append(clauses, fmt.Sprintf("%s LIKE '%%%s%%%s%%%s%%'", key, digits[:3], digits[3:6], digits[6:]))
		case strings.Contains(value, "%"):
			clauses = append(clauses, fmt.Sprintf("%s LIKE '%s'", key, value))
		default:
			clauses = append(clauses, fmt.Sprintf("%s='%s'", key, value))
		}
	}
	return strings.Join(clauses, " AND ")
}

func isPhoneField(key string) bool {
	switch strings.ToLower(key) {
	case "mobilephone", "homephone":
		return true
	}
	return false
}

// substitute replaces each placeholder key in text with its value.
func substitute(text string, replacements map[string]string) string {
	for key, value := range replacements {
		text = strings.ReplaceAll(text, key, value)
	}
	return text
}

// expandValues resolves relative date expressions in field values.
func expandValues(params map[string]string) (map[string]interface{}, error) {
	now := time.Now()
	data := make(map[string]interface{}, len(params))
	for key, value := range params {
		expanded, err := util.ExpandDate(value, now)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		data[key] = expanded
	}
	return data, nil
}

// extraParams returns a copy of params without the named reserved keys.
// sf_mention stays available to chatter operations but never leaks into
// message substitution or record data.
func extraParams(params map[string]string, reserved ...string) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		out[key] = value
	}
	for _, key := range reserved {
		delete(out, key)
	}
	delete(out, "sf_mention")
	return out
}

func firstWithCount(records []map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	if len(records) > 0 {
		for key, value := range records[0] {
			result[key] = value
		}
	}
	result["sf_count"] = len(records)
	return result
}

// singleWithCount returns the flattened record only when exactly one matched.
func singleWithCount(records []map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	if len(records) == 1 {
		result = util.Flatten(records[0])
	}
	result["sf_count"] = len(records)
	return result
}

func recordListWithCount(records []map[string]interface{}) map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		flattened = append(flattened, util.Flatten(record))
	}
	return map[string]interface{}{
		"sf_records": flattened,
		"sf_count":   len(records),
	}
}

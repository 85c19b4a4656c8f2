package schedule

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"sentinel_cam/internal/models"
)

var (
	documentKeys = []string{"quality", "timing", "uuid"}
	windowKeys   = []string{"end", "period", "start"}
)

// Decode parses raw JSON into a document, refusing missing, extra or
// mistyped keys. It does not apply the semantic rules; see Bounds.Validate.
func Decode(raw []byte) (models.ScheduleDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return models.ScheduleDocument{}, models.Invalidf("invalid JSON: %v", err)
	}
	if err := requireKeys("config", top, documentKeys); err != nil {
		return models.ScheduleDocument{}, err
	}

	var windows []map[string]json.RawMessage
	if err := json.Unmarshal(top["timing"], &windows); err != nil {
		return models.ScheduleDocument{}, models.Invalidf("timing must be a list of objects: %v", err)
	}
	for i, w := range windows {
		if err := requireKeys("timing window "+strconv.Itoa(i), w, windowKeys); err != nil {
			return models.ScheduleDocument{}, err
		}
	}

	var doc models.ScheduleDocument
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return models.ScheduleDocument{}, models.Invalidf("invalid config types: %v", err)
	}
	return doc, nil
}

// Parse decodes raw and validates the result against b.
func (b Bounds) Parse(raw []byte) (models.ScheduleDocument, error) {
	doc, err := Decode(raw)
	if err != nil {
		return models.ScheduleDocument{}, err
	}
	if err := b.Validate(doc); err != nil {
		return models.ScheduleDocument{}, err
	}
	return doc, nil
}

// Encode renders doc in the persisted layout.
func Encode(doc models.ScheduleDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "    ")
}

func requireKeys(what string, obj map[string]json.RawMessage, want []string) error {
	if obj == nil {
		return models.Invalidf("%s must be an object", what)
	}
	got := make([]string, 0, len(obj))
	for k := range obj {
		got = append(got, k)
	}
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return models.Invalidf("%s keys [%s] do not match expected [%s]",
			what, strings.Join(got, ", "), strings.Join(want, ", "))
	}
	return nil
}

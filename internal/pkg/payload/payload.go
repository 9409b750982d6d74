package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ManuelReschke/HookFox/app/models"
	"github.com/ManuelReschke/HookFox/internal/pkg/apperrors"
)

// ErrParse is returned (wrapped) in Decoded.Err when the body could not be
// turned into a JSON document. The event is still stored as a marker.
var ErrParse = apperrors.ErrParse

const formContentType = "application/x-www-form-urlencoded"

// Decoded is the normalized view of one webhook body.
type Decoded struct {
	// Document is always valid JSON: the body itself, the form fields as an
	// object, or a marker describing why parsing failed.
	Document     []byte
	EventType    string
	ContactEmail string
	ContactID    string
	Parsed       bool
	Err          error
}

// Marker is stored in place of a body that is not JSON.
type Marker struct {
	Unparseable bool   `json:"unparseable"`
	Error       string `json:"error"`
	Raw         string `json:"raw"`
}

// Decode parses a raw webhook body. Form-encoded bodies become a JSON object;
// anything else must be JSON.
func Decode(body []byte, contentType string) Decoded {
	if len(bytes.TrimSpace(body)) == 0 {
		return marker(body, errors.New("empty body"))
	}

	if isForm(contentType) {
		fields, err := decodeForm(body)
		if err != nil {
			return marker(body, err)
		}
		doc, err := json.Marshal(fields)
		if err != nil {
			return marker(body, err)
		}
		return fromFields(doc, fields)
	}

	// encoding/json lets invalid UTF-8 through inside strings
	if !utf8.Valid(body) {
		return marker(body, errors.New("body is not valid UTF-8"))
	}

	var value any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return marker(body, err)
	}
	if dec.More() {
		return marker(body, errors.New("trailing data after JSON value"))
	}

	fields, _ := value.(map[string]any)
	return fromFields(body, fields)
}

func fromFields(doc []byte, fields map[string]any) Decoded {
	d := Decoded{
		Document:  doc,
		EventType: models.EventTypeUnknown,
		Parsed:    true,
	}
	if fields == nil {
		return d
	}

	if typ := firstString(fields, "type", "event"); typ != "" {
		d.EventType = typ
	}

	contact, _ := fields["contact"].(map[string]any)
	d.ContactEmail = firstString(contact, "email")
	if d.ContactEmail == "" {
		d.ContactEmail = firstString(fields, "email", "contact_email", "contact[email]")
	}
	d.ContactID = firstString(contact, "id")
	if d.ContactID == "" {
		d.ContactID = firstString(fields, "contact_id", "contact[id]")
	}
	return d
}

func marker(body []byte, cause error) Decoded {
	doc, _ := json.Marshal(Marker{
		Unparseable: true,
		Error:       cause.Error(),
		Raw:         strings.ToValidUTF8(string(body), "\uFFFD"),
	})
	return Decoded{
		Document:  doc,
		EventType: models.EventTypeUnknown,
		Parsed:    false,
		Err:       fmt.Errorf("%w: %v", ErrParse, cause),
	}
}

func isForm(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), formContentType)
	}
	return mediaType == formContentType
}

// decodeForm keeps bracketed keys such as contact[email] flat. Values that
// look like JSON objects are decoded, repeated keys become arrays.
func decodeForm(body []byte) (map[string]any, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.New("empty form")
	}

	fields := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			fields[key] = formValue(vals[0])
			continue
		}
		list := make([]any, 0, len(vals))
		for _, v := range vals {
			list = append(list, formValue(v))
		}
		fields[key] = list
	}
	return fields, nil
}

func formValue(v string) any {
	trimmed := strings.TrimSpace(v)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			return obj
		}
	}
	return v
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

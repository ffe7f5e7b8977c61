package serpapi

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

var idEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeJobID unpacks the base64 JSON document google_jobs uses as job_id.
// ok is false when id is not such a document.
func DecodeJobID(id string) (JobIDPayload, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return JobIDPayload{}, false
	}

	for _, enc := range idEncodings {
		raw, err := enc.DecodeString(id)
		if err != nil {
			continue
		}

		var payload JobIDPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return JobIDPayload{}, false
		}
		return payload, true
	}
	return JobIDPayload{}, false
}

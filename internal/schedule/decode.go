package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

type record struct {
	key string
	raw json.RawMessage
}

// records splits a collection document into its members. The document may be
// empty, null, an array, or an object keyed by record id. Object members are
// returned in key order, which is creation order for push ids.
func records(data []byte) ([]record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		out := make([]record, 0, len(items))
		for i, it := range items {
			if isNull(it) {
				continue
			}
			out = append(out, record{key: strconv.Itoa(i), raw: it})
		}
		return out, nil

	case '{':
		var items map[string]json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		keys := make([]string, 0, len(items))
		for k, v := range items {
			if !isNull(v) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		out := make([]record, 0, len(keys))
		for _, k := range keys {
			out = append(out, record{key: k, raw: items[k]})
		}
		return out, nil
	}

	return nil, fmt.Errorf("want a JSON array or object, got %q", truncate(data, 32))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// DecodeNormal parses a bells/normal document and normalizes it. A record that
// does not decode is skipped with a warning. An error is returned only when
// the document as a whole is not a JSON collection.
func DecodeNormal(data []byte, log zerolog.Logger) ([]logic.NormalBellEntry, error) {
	recs, err := records(data)
	if err != nil {
		return nil, fmt.Errorf("normal bells: %w", err)
	}

	raw := make([]RawNormalBell, 0, len(recs))
	for _, rec := range recs {
		var r RawNormalBell
		if err := json.Unmarshal(rec.raw, &r); err != nil {
			log.Warn().Err(err).Str("entry", rec.key).Msg("normal bell does not decode, skipping")
			continue
		}
		r.Key = rec.key
		raw = append(raw, r)
	}

	return NormalizeNormal(raw, log), nil
}

// DecodeSpecial parses a bells/special document and normalizes it.
func DecodeSpecial(data []byte, log zerolog.Logger) ([]logic.SpecialPeriod, error) {
	recs, err := records(data)
	if err != nil {
		return nil, fmt.Errorf("special periods: %w", err)
	}

	raw := make([]RawSpecialPeriod, 0, len(recs))
	for _, rec := range recs {
		var r RawSpecialPeriod
		if err := json.Unmarshal(rec.raw, &r); err != nil {
			log.Warn().Err(err).Str("period", rec.key).Msg("special period does not decode, skipping")
			continue
		}
		r.Key = rec.key
		raw = append(raw, r)
	}

	return NormalizeSpecial(raw, log), nil
}

// DecodeActuator parses a lighting or irrigation document. An empty or null
// document yields the zero config (no mode, always off).
func DecodeActuator(data []byte, log zerolog.Logger) (logic.ActuatorConfig, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return logic.ActuatorConfig{}, nil
	}

	var raw RawActuator
	if err := json.Unmarshal(data, &raw); err != nil {
		return logic.ActuatorConfig{}, fmt.Errorf("actuator config: %w", err)
	}
	return NormalizeActuator(raw, log), nil
}

package conninfo

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Lines renders one "key: value" line per entry.
func (l List) Lines() string {
	var b strings.Builder

	for _, e := range l {
		b.WriteString(e.Key)
		b.WriteString(": ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}

	return b.String()
}

// JSON renders the list as a single flat JSON object. Keys keep list order, which encoding/json can't do for maps.
func (l List) JSON() ([]byte, error) {
	out := []byte("{}")

	for _, e := range l {
		var err error

		out, err = sjson.SetBytes(out, gjson.Escape(e.Key), e.Value)

		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Label is a list entry prepared for human eyes.
type Label struct {
	Key   string
	Label string
	Value string

	// Primary marks the entry the page is about, the client address.
	Primary bool
}

func (l List) Labeled() []Label {
	labels := make([]Label, len(l))

	for i, e := range l {
		labels[i] = Label{
			Key:     e.Key,
			Label:   Beautify(e.Key),
			Value:   e.Value,
			Primary: e.Key == KeyIPAddress,
		}
	}

	return labels
}

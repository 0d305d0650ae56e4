package clfstat

import "encoding/json"

// Record is one decoded log line. The Referrer and UserAgent fields are
// present only if the line was in the Combined format.
type Record struct {
	Format     Format
	RemoteHost Value
	RFC931     Value
	AuthUser   Value
	DateTime   Value
	Request    Value
	StatusCode Value
	BytesSent  Value
	Referrer   Value
	UserAgent  Value
}

// Get returns the value of field f.
func (r Record) Get(f Field) Value {
	if p := r.field(f); p != nil {
		return *p
	}
	return Value{}
}

func (r *Record) field(f Field) *Value {
	switch f {
	case RemoteHost:
		return &r.RemoteHost
	case RFC931:
		return &r.RFC931
	case AuthUser:
		return &r.AuthUser
	case DateTime:
		return &r.DateTime
	case Request:
		return &r.Request
	case StatusCode:
		return &r.StatusCode
	case BytesSent:
		return &r.BytesSent
	case Referrer:
		return &r.Referrer
	case UserAgent:
		return &r.UserAgent
	}
	return nil
}

type jsonRecord struct {
	Format     string `json:"format"`
	RemoteHost Value  `json:"remoteHost"`
	RFC931     Value  `json:"rfc931"`
	AuthUser   Value  `json:"authUser"`
	DateTime   Value  `json:"dateTime"`
	Request    Value  `json:"request"`
	StatusCode Value  `json:"statusCode"`
	BytesSent  Value  `json:"bytesSent"`
	Referrer   *Value `json:"referrer,omitempty"`
	UserAgent  *Value `json:"userAgent,omitempty"`
}

// MarshalJSON encodes r as an object keyed by field name, leaving out the
// fields the line did not have.
func (r Record) MarshalJSON() ([]byte, error) {
	jr := jsonRecord{
		Format:     r.Format.String(),
		RemoteHost: r.RemoteHost,
		RFC931:     r.RFC931,
		AuthUser:   r.AuthUser,
		DateTime:   r.DateTime,
		Request:    r.Request,
		StatusCode: r.StatusCode,
		BytesSent:  r.BytesSent,
	}
	if r.Referrer.Present() {
		jr.Referrer = &r.Referrer
	}
	if r.UserAgent.Present() {
		jr.UserAgent = &r.UserAgent
	}
	return json.Marshal(jr)
}

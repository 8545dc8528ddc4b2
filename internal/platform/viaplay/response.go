package viaplay

// Response is a normalized service response. Data is nil when the body was
// not a JSON object (subtitle files, empty bodies); Raw always holds the body.
type Response struct {
	Data *Object
	Raw  []byte
}

func (r *Response) IsJSON() bool {
	return r != nil && r.Data != nil
}

// Empty reports whether the service returned nothing usable.
func (r *Response) Empty() bool {
	if r == nil {
		return true
	}
	if r.Data != nil {
		return r.Data.Len() == 0
	}
	return len(r.Raw) == 0
}

// ParseResponse decodes raw as an order-preserving JSON object. Bodies that
// are not JSON objects are returned as raw bytes without error. A decoded
// object whose "success" field is falsy yields a *ServiceError named after
// the object's "name" field.
func ParseResponse(raw []byte) (*Response, error) {
	resp := &Response{Raw: raw}

	obj, err := DecodeObject(raw)
	if err != nil {
		return resp, nil
	}
	resp.Data = obj

	if obj.Has("success") && !obj.Truthy("success") {
		return resp, &ServiceError{Name: obj.String("name")}
	}
	return resp, nil
}

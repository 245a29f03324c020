package gazetteer

// Record is one monastery entry in the dataset.
type Record struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	District  string   `json:"district"`
	Tradition string   `json:"tradition"`
	Notes     string   `json:"notes"`
	Access    string   `json:"access,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Images    []string `json:"images"`
	Pano      string   `json:"pano,omitempty"`
}

// Mappable reports whether both coordinates are present.
func (r Record) Mappable() bool {
	return r.Lat != nil && r.Lng != nil
}

// Cover returns the primary image, or "" when the record has none.
func (r Record) Cover() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}

// HasPano reports whether a 360° panorama is available.
func (r Record) HasPano() bool {
	return r.Pano != ""
}

// HasImage reports whether src is one of the record's images.
func (r Record) HasImage(src string) bool {
	for _, img := range r.Images {
		if img == src {
			return true
		}
	}
	return false
}

func cloneRecord(r Record) Record {
	cp := r
	if r.Images != nil {
		cp.Images = append([]string(nil), r.Images...)
	}
	if r.Lat != nil {
		v := *r.Lat
		cp.Lat = &v
	}
	if r.Lng != nil {
		v := *r.Lng
		cp.Lng = &v
	}
	return cp
}

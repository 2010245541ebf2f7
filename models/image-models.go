package models

// Image is the uploaded picture of a meal submission. It is never stored as a
// row; the media persister writes Data and hands back a path.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Size reports the byte length of the upload. A nil image has size zero.
func (i *Image) Size() int64 {
	if i == nil {
		return 0
	}
	return int64(len(i.Data))
}

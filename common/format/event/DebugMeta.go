package event

const ImageTypeProguard = "proguard"

type DebugImage struct {
	Type      string `json:"type"`
	ImageAddr string `json:"image_addr,omitempty"`
	ImageSize uint64 `json:"image_size,omitempty"`
	UUID      string `json:"uuid,omitempty"`
	DebugID   string `json:"debug_id,omitempty"`
	CodeFile  string `json:"code_file,omitempty"`
	DebugFile string `json:"debug_file,omitempty"`
	Arch      string `json:"arch,omitempty"`
}

type DebugMeta struct {
	Images []DebugImage `json:"images"`
}

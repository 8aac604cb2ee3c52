package assets

// File is a locally selected image waiting to be uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the byte length of the file.
func (f File) Size() int {
	return len(f.Data)
}

// Reference identifies one image slot: either a Pending local file or a Resolved URL.
type Reference struct {
	pending bool
	file    File
	preview string
	url     string
	key     string
}

// Pending wraps a staged file and its local preview.
func Pending(file File, preview string) Reference {
	return Reference{pending: true, file: file, preview: preview}
}

// Resolved wraps a durable URL that is already stored somewhere.
func Resolved(url string) Reference {
	return Reference{url: url}
}

// uploaded marks a reference resolved by this process so the object key can be cleaned up.
func uploaded(url, key string) Reference {
	return Reference{url: url, key: key}
}

func (r Reference) IsPending() bool {
	return r.pending
}

func (r Reference) IsResolved() bool {
	return !r.pending && r.url != ""
}

// File returns the staged bytes; zero for Resolved references.
func (r Reference) File() File {
	return r.file
}

// Preview is the data URI shown while the file is pending, or the URL once resolved.
func (r Reference) Preview() string {
	if r.pending {
		return r.preview
	}
	return r.url
}

func (r Reference) URL() string {
	return r.url
}

// Key is the object key when the reference was uploaded by this process.
func (r Reference) Key() string {
	return r.key
}

// View is the JSON projection of a slot shown to the browser.
type View struct {
	Index       int    `json:"index"`
	State       string `json:"state"`
	URL         string `json:"url,omitempty"`
	Preview     string `json:"preview,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int    `json:"size_bytes,omitempty"`
}

const (
	StatePending  = "pending"
	StateResolved = "resolved"
)

// View renders the reference at slot index.
func (r Reference) View(index int) View {
	if r.pending {
		return View{
			Index:       index,
			State:       StatePending,
			Preview:     r.preview,
			Name:        r.file.Name,
			ContentType: r.file.ContentType,
			SizeBytes:   r.file.Size(),
		}
	}
	return View{Index: index, State: StateResolved, URL: r.url, Preview: r.url}
}

// URLs flattens resolved references in slot order. Pending slots yield empty strings.
func URLs(refs []Reference) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.URL()
	}
	return out
}

// UploadedKeys lists the object keys created by this process among refs.
func UploadedKeys(refs []Reference) []string {
	var keys []string
	for _, ref := range refs {
		if ref.key != "" {
			keys = append(keys, ref.key)
		}
	}
	return keys
}

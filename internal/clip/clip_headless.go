package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// It always reports an empty clipboard.
type headlessBackend struct{}

func (headlessBackend) Name() string               { return "headless (no-op)" }
func (headlessBackend) ReadText() ([]byte, error)  { return nil, nil }
func (headlessBackend) ReadImage() ([]byte, error) { return nil, nil }
func (headlessBackend) Close()                     {}

package clip

// Window messages exchanged along the Windows clipboard viewer chain.
const (
	WMDrawClipboard = 0x0308
	WMChangeCBChain = 0x030D
)

// Handle is an opaque window handle.
type Handle uintptr

// SendFunc delivers a window message synchronously.
type SendFunc func(to Handle, msg uint32, wParam, lParam uintptr)

// Chain tracks this viewer's successor in the clipboard viewer chain, a
// singly linked list shared by every viewer on the desktop. Each viewer must
// pass notifications on and keep its successor current, or viewers further
// down stop hearing about changes.
type Chain struct {
	self Handle
	next Handle
	send SendFunc
}

// NewChain returns the chain state for self, whose successor is next (zero
// when self is the only viewer).
func NewChain(self, next Handle, send SendFunc) *Chain {
	return &Chain{self: self, next: next, send: send}
}

func (c *Chain) Self() Handle { return c.self }
func (c *Chain) Next() Handle { return c.next }

// DrawClipboard passes a change notification on to the successor.
func (c *Chain) DrawClipboard(wParam, lParam uintptr) {
	if c.next != 0 {
		c.send(c.next, WMDrawClipboard, wParam, lParam)
	}
}

// ChangeChain handles a viewer leaving the chain. If the leaving viewer is
// our successor we adopt its successor, otherwise the notice travels on.
func (c *Chain) ChangeChain(removed, after Handle) {
	if removed == c.next {
		c.next = after
		return
	}
	if c.next != 0 {
		c.send(c.next, WMChangeCBChain, uintptr(removed), uintptr(after))
	}
}

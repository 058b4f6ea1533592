//go:build windows

package clip

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW     = user32.NewProc("RegisterClassExW")
	procCreateWindowExW      = user32.NewProc("CreateWindowExW")
	procDestroyWindow        = user32.NewProc("DestroyWindow")
	procDefWindowProcW       = user32.NewProc("DefWindowProcW")
	procGetMessageW          = user32.NewProc("GetMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procSendMessageW         = user32.NewProc("SendMessageW")
	procPostQuitMessage      = user32.NewProc("PostQuitMessage")
	procSetClipboardViewer   = user32.NewProc("SetClipboardViewer")
	procChangeClipboardChain = user32.NewProc("ChangeClipboardChain")
	procGetModuleHandleW     = kernel32.NewProc("GetModuleHandleW")
)

const (
	wmDestroy = 0x0002
	wmClose   = 0x0010

	// HWND_MESSAGE, (HWND)-3: parent for message-only windows.
	hwndMessage = ^uintptr(2)

	viewerClassName = "CliptaskClipboardViewer"
)

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   uintptr
	icon       uintptr
	cursor     uintptr
	background uintptr
	menuName   *uint16
	className  *uint16
	iconSm     uintptr
}

type winMsg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	ptX     int32
	ptY     int32
	private uint32
}

// viewer is the per-window state reached from the window procedure.
type viewer struct {
	events chan struct{}
	chain  *Chain
}

var (
	registerOnce sync.Once
	registerErr  error
	classNamePtr *uint16

	viewersMu sync.Mutex
	viewers   = map[uintptr]*viewer{}
)

type chainObserver struct {
	mu     sync.Mutex
	hwnd   uintptr
	exited chan struct{}
}

func newChainObserver() (Observer, bool) { return &chainObserver{}, true }

func (o *chainObserver) Name() string { return "Windows clipboard viewer chain" }

type startResult struct {
	hwnd uintptr
	err  error
}

func (o *chainObserver) Start() (<-chan struct{}, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.exited != nil {
		return nil, ErrStarted
	}

	events := make(chan struct{}, 1)
	ready := make(chan startResult, 1)
	exited := make(chan struct{})
	go pump(events, ready, exited)

	res := <-ready
	if res.err != nil {
		<-exited
		return nil, res.err
	}
	o.hwnd, o.exited = res.hwnd, exited
	return events, nil
}

// Stop asks the window thread to leave the chain and waits for it to exit.
func (o *chainObserver) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.exited == nil {
		return nil
	}
	if r, _, err := procPostMessageW.Call(o.hwnd, wmClose, 0, 0); r == 0 {
		return fmt.Errorf("PostMessageW: %w", err)
	}
	<-o.exited
	o.hwnd, o.exited = 0, nil
	return nil
}

// pump owns the viewer window. Window messages are delivered to the thread
// that created the window, so the goroutine stays locked to it.
func pump(events chan struct{}, ready chan<- startResult, exited chan<- struct{}) {
	defer close(exited)
	defer close(events)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hwnd, err := createViewerWindow()
	if err != nil {
		ready <- startResult{err: err}
		return
	}

	v := &viewer{events: events}
	viewersMu.Lock()
	viewers[hwnd] = v
	viewersMu.Unlock()
	defer func() {
		viewersMu.Lock()
		delete(viewers, hwnd)
		viewersMu.Unlock()
	}()

	// SetClipboardViewer sends WM_DRAWCLIPBOARD before it returns; the
	// window procedure copes with a nil chain for that first message.
	next, _, _ := procSetClipboardViewer.Call(hwnd)
	v.chain = NewChain(Handle(hwnd), Handle(next), sendMessage)
	slog.Debug("joined clipboard viewer chain", "hwnd", hwnd, "next", next)

	ready <- startResult{hwnd: hwnd}

	var m winMsg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func createViewerWindow() (uintptr, error) {
	inst, _, _ := procGetModuleHandleW.Call(0)

	registerOnce.Do(func() {
		classNamePtr, registerErr = windows.UTF16PtrFromString(viewerClassName)
		if registerErr != nil {
			return
		}
		wc := wndClassEx{
			wndProc:   windows.NewCallback(wndProc),
			instance:  inst,
			className: classNamePtr,
		}
		wc.size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			registerErr = fmt.Errorf("RegisterClassExW: %w", err)
		}
	})
	if registerErr != nil {
		return 0, registerErr
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(classNamePtr)),
		0, 0,
		0, 0, 0, 0,
		hwndMessage, 0, inst, 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW: %w", err)
	}
	return hwnd, nil
}

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	viewersMu.Lock()
	v := viewers[hwnd]
	viewersMu.Unlock()

	if v != nil {
		switch uint32(msg) {
		case WMDrawClipboard:
			select {
			case v.events <- struct{}{}:
			default:
			}
			if v.chain != nil {
				v.chain.DrawClipboard(wParam, lParam)
			}
			return 0

		case WMChangeCBChain:
			if v.chain != nil {
				v.chain.ChangeChain(Handle(wParam), Handle(lParam))
			}
			return 0

		case wmClose:
			if v.chain != nil {
				procChangeClipboardChain.Call(hwnd, uintptr(v.chain.Next()))
				slog.Debug("left clipboard viewer chain", "hwnd", hwnd)
			}
			procDestroyWindow.Call(hwnd)
			return 0

		case wmDestroy:
			procPostQuitMessage.Call(0)
			return 0
		}
	}

	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return r
}

func sendMessage(to Handle, msg uint32, wParam, lParam uintptr) {
	procSendMessageW.Call(uintptr(to), uintptr(msg), wParam, lParam)
}

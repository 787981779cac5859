//go:build windows

package hookloop

import (
	"errors"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/pzyyll/kmhook-go/internal/logging"
	"github.com/pzyyll/kmhook-go/internal/worker"
	"github.com/pzyyll/kmhook-go/types"
)

// The raw-input pump is the alternative to the low-level hooks: a
// hidden window registered as an input sink receives WM_INPUT for every
// keyboard and mouse report, including when the process has no focus.
var (
	procRegisterClass          = user32.NewProc("RegisterClassW")
	procCreateWindowEx         = user32.NewProc("CreateWindowExW")
	procDestroyWindow          = user32.NewProc("DestroyWindow")
	procDefWindowProc          = user32.NewProc("DefWindowProcW")
	procRegisterRawInputDevices = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData        = user32.NewProc("GetRawInputData")
	procGetCursorPos           = user32.NewProc("GetCursorPos")
	procGetSystemMetrics       = user32.NewProc("GetSystemMetrics")
	procMapVirtualKey          = user32.NewProc("MapVirtualKeyW")
)

const (
	wmInput = 0x00FF

	ridInput       = 0x10000003
	ridevInputSink = 0x00000100

	hidUsagePageGeneric = 0x01
	hidUsageMouse       = 0x02
	hidUsageKeyboard    = 0x06

	rimTypeMouse    = 0
	rimTypeKeyboard = 1

	riKeyBreak = 0x01
	riKeyE0    = 0x02
	riKeyE1    = 0x04

	keyboardOverrunMakeCode = 0xFF

	riMouseLeftDown   = 0x0001
	riMouseLeftUp     = 0x0002
	riMouseRightDown  = 0x0004
	riMouseRightUp    = 0x0008
	riMouseMiddleDown = 0x0010
	riMouseMiddleUp   = 0x0020
	riMouseB4Down     = 0x0040
	riMouseB4Up       = 0x0080
	riMouseB5Down     = 0x0100
	riMouseB5Up       = 0x0200

	mouseMoveAbsolute   = 0x01
	mouseVirtualDesktop = 0x02

	smCxScreen        = 0
	smCyScreen        = 1
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCxVirtualScreen = 78
	smCyVirtualScreen = 79

	mapVkToVscEx = 4

	wsOverlapped    = 0x00000000
	wsExToolWindow  = 0x00000080
	wsExNoActivate  = 0x08000000
	wsExTransparent = 0x00000020
	wsExLayered     = 0x00080000
	cwUseDefault    = 0x80000000
)

type rawInputHeader struct {
	DwType  uint32
	DwSize  uint32
	HDevice uintptr
	WParam  uintptr
}

type rawKeyboard struct {
	MakeCode         uint16
	Flags            uint16
	Reserved         uint16
	VKey             uint16
	Message          uint32
	ExtraInformation uint32
}

type rawMouse struct {
	UsFlags            uint16
	_                  uint16
	UlButtons          uint32
	UlRawButtons       uint32
	LLastX             int32
	LLastY             int32
	UlExtraInformation uint32
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    uintptr
}

type wndClass struct {
	Style         uint32
	WndProc       uintptr
	ClsExtra      int32
	WndExtra      int32
	Instance      uintptr
	Icon          uintptr
	Cursor        uintptr
	Background    uintptr
	MenuName      *uint16
	ClassName     *uint16
}

var rawClassOnce sync.Once

func rawWindowClassName() *uint16 {
	name, _ := windows.UTF16PtrFromString("kmhook_input_win")
	return name
}

// initRawInput creates the hidden sink window and registers the raw
// keyboard and mouse devices with it. Runs on the pump thread.
func (l *Loop) initRawInput() error {
	hinstance, err := windows.GetModuleHandle(nil)
	if err != nil {
		return err
	}

	className := rawWindowClassName()
	rawClassOnce.Do(func() {
		wc := wndClass{
			WndProc:   rawInputWndProcPtr,
			Instance:  uintptr(hinstance),
			ClassName: className,
		}
		procRegisterClass.Call(uintptr(unsafe.Pointer(&wc)))
	})

	hwnd, _, _ := procCreateWindowEx.Call(
		wsExNoActivate|wsExTransparent|wsExLayered|wsExToolWindow,
		uintptr(unsafe.Pointer(className)),
		0,
		wsOverlapped,
		cwUseDefault, 0, cwUseDefault, 0,
		0, 0, uintptr(hinstance), 0,
	)
	if hwnd == 0 {
		return errors.New("CreateWindowEx failed")
	}

	devices := []rawInputDevice{
		{UsagePage: hidUsagePageGeneric, Usage: hidUsageKeyboard, Flags: ridevInputSink, Target: hwnd},
		{UsagePage: hidUsagePageGeneric, Usage: hidUsageMouse, Flags: ridevInputSink, Target: hwnd},
	}
	ret, _, _ := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&devices[0])),
		uintptr(len(devices)),
		unsafe.Sizeof(devices[0]),
	)
	if ret == 0 {
		procDestroyWindow.Call(hwnd)
		return errors.New("RegisterRawInputDevices failed")
	}

	l.hwnd = hwnd
	return nil
}

func (l *Loop) destroyRawInput() {
	if l.hwnd != 0 {
		procDestroyWindow.Call(l.hwnd)
		l.hwnd = 0
	}
}

// rawInputWndProc handles WM_INPUT on the pump thread and forwards the
// decoded report to the registered workers.
func rawInputWndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	if msg == wmInput {
		var size uint32
		procGetRawInputData.Call(lParam, ridInput, 0,
			uintptr(unsafe.Pointer(&size)), unsafe.Sizeof(rawInputHeader{}))
		if size != 0 {
			buf := make([]byte, size)
			read, _, _ := procGetRawInputData.Call(lParam, ridInput,
				uintptr(unsafe.Pointer(&buf[0])),
				uintptr(unsafe.Pointer(&size)), unsafe.Sizeof(rawInputHeader{}))
			if int32(read) > 0 {
				header := (*rawInputHeader)(unsafe.Pointer(&buf[0]))
				data := unsafe.Pointer(&buf[unsafe.Sizeof(rawInputHeader{})])
				switch header.DwType {
				case rimTypeKeyboard:
					rawKeyboardProc((*rawKeyboard)(data))
				case rimTypeMouse:
					rawMouseProc((*rawMouse)(data))
				}
			}
		}
	}
	ret, _, _ := procDefWindowProc.Call(hwnd, msg, wParam, lParam)
	return ret
}

func rawKeyboardProc(kb *rawKeyboard) {
	if uint32(kb.MakeCode) == keyboardOverrunMakeCode || kb.VKey >= 0xFF {
		return
	}

	var scan uint32
	if kb.MakeCode != 0 {
		scan = uint32(kb.MakeCode) & 0x7F
		if kb.Flags&riKeyE0 != 0 {
			scan |= 0xE000
		} else if kb.Flags&riKeyE1 != 0 {
			scan |= 0xE100
		}
	} else {
		ret, _, _ := procMapVirtualKey.Call(uintptr(kb.VKey), mapVkToVscEx)
		scan = uint32(ret) & 0xFFFF
	}

	wm := kb.Message
	if wm == 0 {
		if kb.Flags&riKeyBreak != 0 {
			wm = worker.WMKeyUp
		} else {
			wm = worker.WMKeyDown
		}
	}

	msg := &worker.KeyboardSysMsg{
		WMCode:   wm,
		VkCode:   uint32(kb.VKey),
		ScanCode: scan,
	}
	for _, w := range Default().KeyboardWorkers() {
		w.PostMsg(msg)
	}
}

func rawMouseProc(ms *rawMouse) {
	buttonFlags := ms.UlButtons & 0xFFFF

	var pt point
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))

	pos := types.Pos{X: pt.X, Y: pt.Y}
	if ms.UsFlags&mouseMoveAbsolute != 0 {
		var left, top, width, height int32
		if ms.UsFlags&mouseVirtualDesktop != 0 {
			left = getSystemMetrics(smXVirtualScreen)
			top = getSystemMetrics(smYVirtualScreen)
			width = getSystemMetrics(smCxVirtualScreen)
			height = getSystemMetrics(smCyVirtualScreen)
		} else {
			width = getSystemMetrics(smCxScreen)
			height = getSystemMetrics(smCyScreen)
		}
		pos.X = ms.LLastX*width/65535 + left
		pos.Y = ms.LLastY*height/65535 + top
	} else if ms.LLastX != 0 || ms.LLastY != 0 {
		pos.X = pt.X + ms.LLastX
		pos.Y = pt.Y + ms.LLastY
	}

	var wm uint32
	var mouseData uint32
	switch buttonFlags {
	case riMouseLeftDown:
		wm = worker.WMLButtonDown
	case riMouseLeftUp:
		wm = worker.WMLButtonUp
	case riMouseRightDown:
		wm = worker.WMRButtonDown
	case riMouseRightUp:
		wm = worker.WMRButtonUp
	case riMouseMiddleDown:
		wm = worker.WMMButtonDown
	case riMouseMiddleUp:
		wm = worker.WMMButtonUp
	case riMouseB4Down:
		wm, mouseData = worker.WMXButtonDown, 1<<16
	case riMouseB4Up:
		wm, mouseData = worker.WMXButtonUp, 1<<16
	case riMouseB5Down:
		wm, mouseData = worker.WMXButtonDown, 2<<16
	case riMouseB5Up:
		wm, mouseData = worker.WMXButtonUp, 2<<16
	case 0:
		wm = worker.WMMouseMove
	default:
		logging.L().Debug("hookloop", "unsupported mouse button flags 0x%X", buttonFlags)
		return
	}

	msg := &worker.MouseSysMsg{
		WMCode:    wm,
		Pt:        pos,
		MouseData: mouseData,
	}
	for _, w := range Default().MouseWorkers() {
		w.PostMsg(msg)
	}
}

func getSystemMetrics(index int32) int32 {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int32(ret)
}

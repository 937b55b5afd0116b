package stacktrace

import (
	"strconv"
	"strings"

	"crashview/common/format/event"
)

const addrModeAbsolute = "abs"

// ParseAddress reads a hexadecimal address with an optional 0x prefix. Like parseInt with
// radix 16 it consumes the longest valid hex prefix; anything unparseable yields 0.
func ParseAddress(s string) uint64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	end := 0
	for end < len(s) && isHexDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseUint(s[:end], 16, 64)
	if err != nil {
		return 0
	}
	return v
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// ImageRange returns the half-open address range [start, end) covered by an image.
func ImageRange(image *event.DebugImage) (start, end uint64) {
	if image == nil {
		return 0, 0
	}
	start = ParseAddress(image.ImageAddr)
	return start, start + image.ImageSize
}

// FindImageForAddress resolves the debug image owning addr. Absolute addressing ("" or "abs")
// searches for the image whose range contains addr; "rel:<index>" addresses are relative to
// the image at that index.
func FindImageForAddress(images []event.DebugImage, addr uint64, addrMode string) *event.DebugImage {
	if len(images) == 0 {
		return nil
	}
	if addrMode == "" || addrMode == addrModeAbsolute {
		if addr == 0 {
			return nil
		}
		for i := range images {
			start, end := ImageRange(&images[i])
			if addr >= start && addr < end {
				return &images[i]
			}
		}
		return nil
	}
	if !strings.HasPrefix(addrMode, "rel:") {
		return nil
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(addrMode, "rel:"))
	if err != nil || idx < 0 || idx >= len(images) {
		return nil
	}
	return &images[idx]
}

// FrameImage resolves the debug image of a frame's instruction address.
func FrameImage(frame *event.Frame, images []event.DebugImage) *event.DebugImage {
	return FindImageForAddress(images, ParseAddress(frame.InstructionAddr), frame.AddrMode)
}

// RelativeAddress is the offset of the frame's instruction address into its image.
func RelativeAddress(frame *event.Frame, image *event.DebugImage) int64 {
	return int64(ParseAddress(frame.InstructionAddr)) - int64(ParseAddress(image.ImageAddr))
}

// MaxRelativeAddressLength is the widest hex rendering of any frame's image-relative address,
// used to align the address column. Frames without an image do not contribute.
func MaxRelativeAddressLength(frames []event.Frame, images []event.DebugImage) int {
	width := 0
	for i := range frames {
		image := FrameImage(&frames[i], images)
		if image == nil {
			continue
		}
		if n := len(strconv.FormatInt(RelativeAddress(&frames[i], image), 16)); n > width {
			width = n
		}
	}
	return width
}

// FormatAddress renders an address as 0x-prefixed hex zero padded to width digits.
func FormatAddress(addr int64, width int) string {
	hex := strconv.FormatInt(addr, 16)
	if pad := width - len(hex); pad > 0 {
		hex = strings.Repeat("0", pad) + hex
	}
	return "0x" + hex
}

// DisplayAddress renders a frame's address for the address column: the absolute instruction
// address, or the offset into its image when one resolves and absolute display is off.
func DisplayAddress(frame *event.Frame, images []event.DebugImage, width int, prefs DisplayPreferences) string {
	if prefs.ShowAbsoluteAddress {
		return frame.InstructionAddr
	}
	image := FrameImage(frame, images)
	if image == nil {
		return frame.InstructionAddr
	}
	return FormatAddress(RelativeAddress(frame, image), width)
}

// DisplayFunction picks the function name shown for a frame.
func DisplayFunction(frame *event.Frame, prefs DisplayPreferences) string {
	if prefs.ShowFullFunctionName && frame.RawFunction != "" {
		return frame.RawFunction
	}
	if frame.Function != "" {
		return frame.Function
	}
	return frame.SymbolAddr
}

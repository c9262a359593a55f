package fem

import (
	"fmt"

	"github.com/npillmayer/fontengines/core"
	"github.com/npillmayer/fontengines/core/fixedpt"
	"github.com/npillmayer/fontengines/core/font"
)

// ScalerRequest describes a rasterization configuration: a font, a 2x2
// transform from text space to device space, and rendering options.
//
// The transform is (ScaleX, SkewX, SkewY, ScaleY) in 16.16 fractional
// pixels. A regular horizontal font at 12 pixels has ScaleX = ScaleY = 12.0
// and zero skew.
type ScalerRequest struct {
	Source              font.Source      // exactly one of path, buffer or stream
	FontID              uint32           // caller-assigned id of the font resource
	ScaleX              fixedpt.F16Dot16 // scaling along the x-axis
	SkewX               fixedpt.F16Dot16 // pushes x-coordinates by an angle
	SkewY               fixedpt.F16Dot16 // pushes y-coordinates by an angle
	ScaleY              fixedpt.F16Dot16 // scaling along the y-axis
	SubpixelPositioning bool             // glyph origins may be fractional
	MaskFormat          AliasMode        // requested pixel format
	Flags               Flags            // kerning, hinting, bitmaps, emboldening
}

// NewRequest creates a request for an unskewed font at a given pixel size,
// rendering to 8-bit gray with normal hinting.
func NewRequest(src font.Source, size fixedpt.F16Dot16) *ScalerRequest {
	return &ScalerRequest{
		Source:     src,
		ScaleX:     size,
		ScaleY:     size,
		MaskFormat: AliasGray,
		Flags:      Flags(0).WithHinting(HintingNormal),
	}
}

// Hinting returns the hinting level encoded in the request's flags.
func (req *ScalerRequest) Hinting() Hinting {
	return req.Flags.Hinting()
}

// SetHinting sets the hinting level.
func (req *ScalerRequest) SetHinting(h Hinting) {
	req.Flags = req.Flags.WithHinting(h)
}

// IsAxisAligned is true if the transform has no skew and no negative
// scale. Requests which are not axis aligned are hinted with an isotropic
// approximation of their transform.
func (req *ScalerRequest) IsAxisAligned() bool {
	return req.SkewX == 0 && req.SkewY == 0 && req.ScaleX >= 0 && req.ScaleY >= 0
}

// Validate checks the font source and the mask format.
func (req *ScalerRequest) Validate() error {
	if req == nil {
		return core.Error(core.EINVALID, "scaler request is nil")
	}
	if err := req.Source.Validate(); err != nil {
		return err
	}
	if req.MaskFormat > AliasLCD16 {
		return core.Error(core.EINVALID, "unknown mask format %d", req.MaskFormat)
	}
	return nil
}

func (req *ScalerRequest) String() string {
	return fmt.Sprintf("request{%s id=%d [%s %s %s %s] %s hint=%s flags=%#02x sub=%v}",
		req.Source, req.FontID, req.ScaleX, req.SkewX, req.SkewY, req.ScaleY,
		req.MaskFormat, req.Hinting(), uint8(req.Flags), req.SubpixelPositioning)
}

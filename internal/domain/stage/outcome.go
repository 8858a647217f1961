package stage

// ReasonCode classifies a validation outcome. Codes are stable strings
// because they are persisted verbatim in the participant event log.
type ReasonCode string

const (
	ReasonOK ReasonCode = "OK"

	// Chapter 1: object operations
	ReasonNoActiveCube        ReasonCode = "NO_ACTIVE_CUBE"
	ReasonTransformNotMatched ReasonCode = "TRANSFORM_NOT_MATCHED"
	ReasonScaleNotChanged     ReasonCode = "SCALE_NOT_CHANGED"

	// Chapter 2: viewport navigation
	ReasonNoView3D         ReasonCode = "NO_VIEW3D"
	ReasonViewNotMoved     ReasonCode = "VIEW_NOT_MOVED"
	ReasonViewNotZoomed    ReasonCode = "VIEW_NOT_ZOOMED"
	ReasonViewNotRotated   ReasonCode = "VIEW_NOT_ROTATED"
	ReasonViewNotCompleted ReasonCode = "VIEW_NOT_COMPLETED"

	// Chapter 3: mesh editing
	ReasonNotInEditMode      ReasonCode = "NOT_IN_EDIT_MODE"
	ReasonWrongSelectMode    ReasonCode = "WRONG_SELECT_MODE"
	ReasonNotEnoughSelected  ReasonCode = "NOT_ENOUGH_SELECTED"
	ReasonNothingSelected    ReasonCode = "NOTHING_SELECTED"
	ReasonExtrudeNotDetected ReasonCode = "EXTRUDE_NOT_DETECTED"
	ReasonLoopcutNotDetected ReasonCode = "LOOPCUT_NOT_DETECTED"

	// Chapter 4: sculpting
	ReasonNotInSculptMode   ReasonCode = "NOT_IN_SCULPT_MODE"
	ReasonSculptNotDetected ReasonCode = "SCULPT_NOT_DETECTED"
	ReasonWrongBrush        ReasonCode = "WRONG_BRUSH"

	// Chapter 5: material nodes
	ReasonNoActiveObject      ReasonCode = "NO_ACTIVE_OBJECT"
	ReasonNoMaterial          ReasonCode = "NO_MATERIAL"
	ReasonNoBSDF              ReasonCode = "NO_BSDF"
	ReasonBaseColorNotChanged ReasonCode = "BASE_COLOR_NOT_CHANGED"
	ReasonNoImageTexture      ReasonCode = "NO_IMAGE_TEXTURE"
	ReasonNodeLinkIncorrect   ReasonCode = "NODE_LINK_INCORRECT"
	ReasonPBRNotChanged       ReasonCode = "PBR_NOT_CHANGED"

	// Chapter 6: final render
	ReasonRenderNotSaved ReasonCode = "RENDER_NOT_SAVED"

	// Dispatch fallbacks
	ReasonNotImplemented ReasonCode = "NOT_IMPLEMENTED"
	ReasonUnknown        ReasonCode = "UNKNOWN"
)

// Outcome is the result of evaluating a stage predicate against an
// environment snapshot. Produced fresh per evaluation, never stored.
type Outcome struct {
	OK      bool
	Reason  ReasonCode
	Message string
	Hints   []string
}

// Pass builds a successful outcome.
func Pass(message string) Outcome {
	return Outcome{OK: true, Reason: ReasonOK, Message: message}
}

// Fail builds a failed outcome carrying the full (unescalated) hint list.
func Fail(reason ReasonCode, message string, hints ...string) Outcome {
	return Outcome{Reason: reason, Message: message, Hints: hints}
}

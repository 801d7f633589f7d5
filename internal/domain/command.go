package domain

// Namespace tags every command and event exchanged with the engine over the
// streaming session. Inbound events carrying any other namespace are ignored.
const Namespace = "Configurator"

// Command types.
const (
	TypeCar         = "Car"
	TypeEnvironment = "Environment"
	TypeSystem      = "System"
	TypeSequence    = "Sequence"
	TypeRender      = "Render"
)

// Actions, grouped by type.
const (
	ActionLoadByID                   = "LoadById"
	ActionSetColor                   = "SetColor"
	ActionSetWheel                   = "SetWheel"
	ActionChangeBackground           = "ChangeBackground"
	ActionChangeDayNight             = "ChangeDayNight"
	ActionTakeScreenshot             = "TakeScreenshot"
	ActionTakeScreenshotNoBackground = "TakeScreenshotNoBackground"
	ActionSetCloudflareURL           = "SetCloudflareURL"
	ActionGetSequences               = "GetSequences"
	ActionPlaySequence               = "PlaySequence"
	ActionStopSequence               = "StopSequence"
	ActionSequenceFinished           = "SequenceFinished"
	ActionStartRender                = "StartRender"
	ActionCancelRender               = "CancelRender"
	ActionRenderStarted              = "RenderStarted"
	ActionRenderProgress             = "RenderProgress"
	ActionRenderComplete             = "RenderComplete"
	ActionRenderFailed               = "RenderFailed"
	ActionRenderCancelled            = "RenderCancelled"
)

// Command is the outbound envelope sent on the engine's interaction channel.
// Commands are fire-and-forget: the transport carries no correlation id, so
// responses are matched back by (type, action) plus echoed fields like carId.
type Command struct {
	NS     string `json:"ns"`
	Type   string `json:"type"`
	Action string `json:"action"`
	CarID  string `json:"carId,omitempty"`
	Value  any    `json:"value,omitempty"`
	// Data is a structured object for every action except Render/CancelRender,
	// which the engine-side decoder expects as a JSON-encoded string.
	Data            any    `json:"data,omitempty"`
	Hex             string `json:"hex,omitempty"`
	WheelID         string `json:"wheelId,omitempty"`
	BackgroundID    string `json:"backgroundId,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	IsDay           *bool  `json:"isDay,omitempty"`
	URL             string `json:"url,omitempty"`
}

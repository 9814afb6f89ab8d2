package action

// Method is the closed set of semantic actions with dedicated handlers.
// Anything else goes through the fallback branch, which forwards to a
// native capability of the underlying locator when the policy allows it.
type Method int

const (
	// MethodUnknown means no dedicated handler exists for the name.
	MethodUnknown Method = iota
	MethodClick
	MethodFill
	MethodSelectOption
	MethodScrollIntoView
	MethodScrollTo
	MethodNextChunk
	MethodPrevChunk
	MethodPressKey
)

// methodNames maps request strings to methods. Several aliases map to the
// same handler because decision layers are not consistent about naming.
var methodNames = map[string]Method{
	"click":                    MethodClick,
	"fill":                     MethodFill,
	"type":                     MethodFill,
	"fillOrType":               MethodFill,
	"selectOption":             MethodSelectOption,
	"selectOptionFromDropdown": MethodSelectOption,
	"scrollIntoView":           MethodScrollIntoView,
	"scrollTo":                 MethodScrollTo,
	"scroll":                   MethodScrollTo,
	"nextChunk":                MethodNextChunk,
	"prevChunk":                MethodPrevChunk,
	"pressKey":                 MethodPressKey,
}

// ParseMethod maps a request method name onto the closed set.
func ParseMethod(name string) Method {
	if m, ok := methodNames[name]; ok {
		return m
	}
	return MethodUnknown
}

// String returns the canonical name of the method.
func (m Method) String() string {
	switch m {
	case MethodClick:
		return "click"
	case MethodFill:
		return "fillOrType"
	case MethodSelectOption:
		return "selectOption"
	case MethodScrollIntoView:
		return "scrollIntoView"
	case MethodScrollTo:
		return "scrollTo"
	case MethodNextChunk:
		return "nextChunk"
	case MethodPrevChunk:
		return "prevChunk"
	case MethodPressKey:
		return "pressKey"
	default:
		return "unknown"
	}
}

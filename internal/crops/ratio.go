package crops

// Aspect names a crop orientation.
type Aspect string

const (
	Landscape Aspect = "landscape"
	Portrait  Aspect = "portrait"
	Freeform  Aspect = "freeform"
)

// Standard ratios offered when cropping. Freeform carries no ratio.
const (
	LandscapeRatio = 5.0 / 3.0
	PortraitRatio  = 2.0 / 3.0
)

// Tokens sent to the cropper for each standard ratio.
//
// The portrait token is "3:2" although its numeric ratio is 2/3.
const (
	LandscapeToken = "5:3"
	PortraitToken  = "3:2"
)

var aspectByRatio = map[float64]Aspect{
	LandscapeRatio: Landscape,
	PortraitRatio:  Portrait,
}

var tokenByAspect = map[Aspect]string{
	Landscape: LandscapeToken,
	Portrait:  PortraitToken,
}

var aspectByToken = map[string]Aspect{
	LandscapeToken: Landscape,
	PortraitToken:  Portrait,
}

// Classify maps a numeric ratio to its aspect and cropper token. Only exact
// matches of the standard ratios classify; anything else is Freeform with
// an empty token.
func Classify(ratio float64) (Aspect, string) {
	a, ok := aspectByRatio[ratio]
	if !ok {
		return Freeform, ""
	}
	return a, tokenByAspect[a]
}

// Word maps a cropper token to its aspect name. Unknown or empty tokens are freeform.
func Word(token string) Aspect {
	if a, ok := aspectByToken[token]; ok {
		return a
	}
	return Freeform
}

package entities

// Energy classifies how much movement a body animation carries
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

const (
	DefaultAnimation  = "idle"
	DefaultExpression = "neutral"
	DefaultIntensity  = 0.5

	MinIntensity = 0.0
	MaxIntensity = 1.0
)

// AnimationEntry describes one body animation the avatar can play
type AnimationEntry struct {
	Name        string
	Description string
	Energy      Energy
	UseCases    []string
}

// ExpressionEntry describes one facial expression the avatar can show
type ExpressionEntry struct {
	Name        string
	Description string
	Emotion     string
	Intensity   float64
}

// The catalog mirrors what the frontend avatar can render. It is read-only
// after package init and safe for concurrent use.
var (
	animationCatalog = []AnimationEntry{
		{Name: "idle", Description: "Standing idle - neutral pose", Energy: EnergyLow, UseCases: []string{"neutral moments", "listening", "thinking"}},
		{Name: "walkRelaxed", Description: "Casual walking - relaxed movement", Energy: EnergyLow, UseCases: []string{"transitions", "casual storytelling"}},
		{Name: "walkThink", Description: "Walking while thinking - contemplative", Energy: EnergyMedium, UseCases: []string{"building up", "pacing", "considering"}},
		{Name: "run", Description: "Running/energetic movement - high energy", Energy: EnergyHigh, UseCases: []string{"excitement", "climax", "punchlines"}},
		{Name: "sitTalk", Description: "Sitting and talking - conversational", Energy: EnergyMedium, UseCases: []string{"casual delivery", "storytelling", "relaxed tone"}},
		{Name: "spellcast", Description: "Spellcast gesture - dramatic hand movement", Energy: EnergyHigh, UseCases: []string{"emphasis", "dramatic moments", "punchlines"}},
		{Name: "relax", Description: "Relaxing pose - comfortable stance", Energy: EnergyLow, UseCases: []string{"conclusion", "settling down", "comfortable moments"}},
	}

	expressionCatalog = []ExpressionEntry{
		{Name: "neutral", Description: "Default neutral face", Emotion: "neutral", Intensity: 0.0},
		{Name: "smile", Description: "Happy smile - friendly", Emotion: "positive", Intensity: 0.4},
		{Name: "laugh", Description: "Laughing - very amused", Emotion: "positive", Intensity: 1.0},
		{Name: "shocked", Description: "Shocked expression - surprised", Emotion: "surprise", Intensity: 0.8},
		{Name: "angry", Description: "Angry expression - annoyed or sarcastic", Emotion: "negative", Intensity: 0.7},
		{Name: "confused", Description: "Confused expression - uncertain", Emotion: "uncertain", Intensity: 0.5},
	}

	animationIndex  = make(map[string]int, len(animationCatalog))
	expressionIndex = make(map[string]int, len(expressionCatalog))
)

func init() {
	for i, a := range animationCatalog {
		animationIndex[a.Name] = i
	}
	for i, e := range expressionCatalog {
		expressionIndex[e.Name] = i
	}
}

// Animations returns the animation catalog in display order.
func Animations() []AnimationEntry {
	out := make([]AnimationEntry, len(animationCatalog))
	copy(out, animationCatalog)
	return out
}

// Expressions returns the expression catalog in display order.
func Expressions() []ExpressionEntry {
	out := make([]ExpressionEntry, len(expressionCatalog))
	copy(out, expressionCatalog)
	return out
}

func IsAnimation(name string) bool {
	_, ok := animationIndex[name]
	return ok
}

func IsExpression(name string) bool {
	_, ok := expressionIndex[name]
	return ok
}

// ClampIntensity bounds a keyframe intensity to [0, 1].
func ClampIntensity(v float64) float64 {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

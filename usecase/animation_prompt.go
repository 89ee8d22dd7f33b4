package usecase

import (
	"fmt"
	"strings"

	"github.com/satriahrh/roastme/domain/entities"
)

// BuildAnimationPrompt asks the model to direct a performance of transcript
// lasting duration seconds, restricted to the catalog vocabulary.
func BuildAnimationPrompt(transcript string, duration float64, minKeyframes, maxKeyframes int) string {
	var animations strings.Builder
	for _, a := range entities.Animations() {
		fmt.Fprintf(&animations, "- %s: %s (energy: %s; good for %s)\n", a.Name, a.Description, a.Energy, strings.Join(a.UseCases, ", "))
	}

	var expressions strings.Builder
	for _, e := range entities.Expressions() {
		fmt.Fprintf(&expressions, "- %s: %s\n", e.Name, e.Description)
	}

	d := formatSeconds(duration)
	return fmt.Sprintf(`You direct animation for a 3D character performing stand-up comedy.
Read the transcript below and write an animation script that brings the delivery to life.

TARGET DURATION: %[1]s seconds
TRANSCRIPT:
%[2]s

BODY ANIMATIONS (use these names exactly):
%[3]s
FACIAL EXPRESSIONS (use these names exactly):
%[4]s
Choose timing and movement that:
1. Follows the rhythm and emotional beats of the speech
2. Hits the punchlines with bigger animations and expressions
3. Builds energy through the performance
4. Varies the animations so it stays interesting to watch
5. Matches expression intensity to the tone

Reply with JSON only (no markdown, no commentary) in this shape:
{
  "metadata": {
    "duration": %[1]s,
    "transcript": "<first 100 characters of the transcript>...",
    "intensity": "<low|medium|high>",
    "style": "<comedic style>",
    "notes": "<short analysis>"
  },
  "timeline": [
    {
      "startTime": <seconds>,
      "endTime": <seconds>,
      "animation": "<body animation name>",
      "expression": "<facial expression name>",
      "intensity": <0.0-1.0>,
      "notes": "<what happens here>"
    }
  ]
}

Rules:
- The timeline covers 0 to %[1]s seconds with no gaps
- Between %[5]d and %[6]d keyframes
- Only animation and expression names from the lists above
- Intensity between 0.0 and 1.0
- At least 3 different animations
- Vary the expressions with the emotional content`,
		d, transcript, animations.String(), expressions.String(), minKeyframes, maxKeyframes)
}

func formatSeconds(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

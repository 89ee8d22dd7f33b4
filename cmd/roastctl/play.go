package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// audioPlayer represents an audio player command and its arguments
type audioPlayer struct {
	command string
	args    []string
}

// Players that understand WAV, in order of preference
var audioPlayers = []audioPlayer{
	{"afplay", nil},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{"play", []string{"-q"}},
	{"aplay", []string{"-q"}},
}

// playAudioFile plays a WAV file with the first available system player
func playAudioFile(filename string, logger *zap.Logger) error {
	for _, player := range audioPlayers {
		if !isCommandAvailable(player.command) {
			continue
		}
		args := append(append([]string{}, player.args...), filename)
		logger.Info("Attempting to play audio",
			zap.String("player", player.command),
			zap.Strings("args", args))

		err := exec.Command(player.command, args...).Run()
		if err == nil {
			return nil
		}
		logger.Debug("Player failed", zap.String("player", player.command), zap.Error(err))
	}
	return fmt.Errorf("no suitable audio player found")
}

// isCommandAvailable checks if a command is available in the system PATH
func isCommandAvailable(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

func printPlaybackInstructions(filename string) {
	fmt.Printf("🎵 To play the audio file, use:\n")
	fmt.Printf("  ffplay -nodisp -autoexit %s\n", filename)
	switch runtime.GOOS {
	case "darwin":
		fmt.Printf("  afplay %s\n", filename)
	case "linux":
		fmt.Printf("  aplay %s\n", filename)
	}
}

// Command roastctl uploads an image to a running roast server, prints the
// roast and saves the narration as a WAV file.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/roastme/domain/entities"
	"github.com/satriahrh/roastme/internal/wav"
)

type roastResponse struct {
	Success       bool                      `json:"success"`
	Error         string                    `json:"error"`
	Data          *entities.RoastResult     `json:"data"`
	Audio         string                    `json:"audio"`
	AudioMimeType string                    `json:"audioMimeType"`
	Animation     *entities.AnimationScript `json:"animation"`
}

func main() {
	godotenv.Load()

	server := flag.String("server", envOr("ROAST_SERVER_URL", "http://localhost:8080"), "roast server base URL")
	imagePath := flag.String("image", "", "image to roast (required)")
	output := flag.String("out", "roast_audio.wav", "where to write the narration audio")
	stream := flag.Bool("stream", false, "use the websocket endpoint and print each stage as it arrives")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall request timeout")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatal("Failed to read image", zap.String("path", *imagePath), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var resp *roastResponse
	if *stream {
		resp, err = streamRoast(ctx, *server, image, logger)
	} else {
		resp, err = postRoast(ctx, *server, filepath.Base(*imagePath), image)
	}
	if err != nil {
		logger.Fatal("Roast failed", zap.Error(err))
	}

	printRoast(resp)

	if resp.Audio == "" {
		fmt.Println("🔇 No audio in response")
		return
	}
	if err := saveAudio(*output, resp.Audio, resp.AudioMimeType); err != nil {
		logger.Fatal("Failed to save audio", zap.Error(err))
	}
	fmt.Printf("✅ Audio saved to %s\n", *output)

	if os.Getenv("NO_AUTOPLAY") != "true" {
		if err := playAudioFile(*output, logger); err != nil {
			logger.Warn("Failed to play audio automatically", zap.Error(err))
			printPlaybackInstructions(*output)
		}
	} else {
		printPlaybackInstructions(*output)
	}
}

// postRoast uploads the image as multipart form data.
func postRoast(ctx context.Context, server, filename string, image []byte) (*roastResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(server, "/")+"/roast", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp roastResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %s", res.StatusCode, data)
	}
	if !resp.Success {
		return nil, fmt.Errorf("server returned %d: %s", res.StatusCode, resp.Error)
	}
	return &resp, nil
}

func printRoast(resp *roastResponse) {
	r := resp.Data
	if r == nil {
		return
	}
	fmt.Printf("\n🔥 %s\n\n", r.OverallVibe)
	for i, line := range r.RoastLines {
		fmt.Printf("  %2d. %s\n", i+1, line)
	}
	fmt.Printf("\n💀 %s\n", r.OneLiner)
	fmt.Printf("   confidence %d/10, tags: %s\n\n", r.ConfidenceRating, strings.Join(r.StyleTags, ", "))

	if a := resp.Animation; a != nil {
		fallback := ""
		if a.Metadata.Fallback {
			fallback = " (fallback)"
		}
		fmt.Printf("🎭 Animation%s: %d keyframes over %.1fs\n", fallback, len(a.Timeline), a.Metadata.Duration)
		for _, k := range a.Timeline {
			fmt.Printf("   %5.1f-%5.1fs %-12s %-9s %.1f\n", k.StartTime, k.EndTime, k.Animation, k.Expression, k.Intensity)
		}
	}
}

// saveAudio frames the base64 PCM as WAV and checks the written file.
func saveAudio(path, audio, mimeType string) error {
	pcm, err := base64.StdEncoding.DecodeString(audio)
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}

	rate := sampleRate(mimeType)
	if err := wav.WriteFile(path, pcm, entities.DefaultChannels, rate, entities.DefaultBitsPerSample); err != nil {
		return err
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	header, data, err := wav.Parse(written)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if len(data) != len(pcm) || header.SampleRate != rate {
		return fmt.Errorf("verify %s: wrote %d bytes at %dHz, read back %d at %dHz",
			path, len(pcm), rate, len(data), header.SampleRate)
	}
	return nil
}

// sampleRate reads the rate parameter of an audio/L16 MIME type.
func sampleRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || key != "rate" {
			continue
		}
		if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
			return rate
		}
	}
	return entities.DefaultSampleRate
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

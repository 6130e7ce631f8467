package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/ports"
)

var (
	reSilenceStart = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	reSilenceEnd   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)
	rePtsTime      = regexp.MustCompile(`pts_time:\s*(-?[0-9.]+)`)
	reRMSLevel     = regexp.MustCompile(`lavfi\.astats\.Overall\.RMS_level=(-?[0-9.]+|-?inf)`)
)

// SilenceDetect runs one ffmpeg silencedetect pass and parses the
// silence_start/silence_end marker pairs from stderr.
func (a *Adapter) SilenceDetect(ctx context.Context, path string, noiseDB, minDurS float64) ([]ports.SilenceInterval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDB, minDurS)
	cmd := exec.CommandContext(ctx, a.ffmpeg, "-i", path, "-af", filter, "-f", "null", "-")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("ffmpeg silencedetect: %w\n%s", err, string(out))
		}
	}

	var intervals []ports.SilenceInterval
	var openStart float64
	haveOpen := false
	for _, line := range strings.Split(string(out), "\n") {
		if m := reSilenceStart.FindStringSubmatch(line); m != nil {
			openStart = parseFloat(m[1])
			haveOpen = true
			continue
		}
		if m := reSilenceEnd.FindStringSubmatch(line); m != nil && haveOpen {
			intervals = append(intervals, ports.SilenceInterval{StartS: openStart, EndS: parseFloat(m[1])})
			haveOpen = false
		}
	}
	return intervals, nil
}

// SceneDetect runs one scene-change detection pass, optionally
// downsampled by fps and scaled to scaleWidth, and parses the
// showinfo pts_time markers from stderr. A timeout kills the process
// and returns whatever events were parsed before that point.
func (a *Adapter) SceneDetect(ctx context.Context, path string, threshold, fps float64, scaleWidth int, timeout time.Duration) ([]ports.SceneEvent, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	filters := []string{fmt.Sprintf("select='gt(scene,%g)'", threshold)}
	if fps > 0 {
		filters = append([]string{fmt.Sprintf("fps=%g", fps)}, filters...)
	}
	filters = append(filters, fmt.Sprintf("scale=%d:-2", scaleWidth), "showinfo")
	vf := strings.Join(filters, ",")

	cmd := exec.CommandContext(cctx, a.ffmpeg, "-i", path, "-vf", vf, "-vsync", "vfr", "-f", "null", "-")
	out, err := cmd.CombinedOutput()

	events := parseSceneEvents(string(out))
	if cctx.Err() != nil {
		return events, nil
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return events, fmt.Errorf("ffmpeg scenedetect: %w", err)
		}
	}
	return events, nil
}

func parseSceneEvents(output string) []ports.SceneEvent {
	var events []ports.SceneEvent
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Parsed_showinfo") {
			continue
		}
		if m := rePtsTime.FindStringSubmatch(line); m != nil {
			events = append(events, ports.SceneEvent{TimeS: parseFloat(m[1])})
		}
	}
	return events
}

// AudioRMSWindows runs one astats pass with ametadata-print and
// buckets the per-frame Overall RMS level readings into windowS-second
// windows, averaging within each window.
func (a *Adapter) AudioRMSWindows(ctx context.Context, path string, windowS float64) ([]float64, error) {
	filter := "astats=metadata=1:reset=1,ametadata=print=key=lavfi.astats.Overall.RMS_level:file=-"
	cmd := exec.CommandContext(ctx, a.ffmpeg, "-i", path, "-af", filter, "-f", "null", "-")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg astats stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg astats start: %w", err)
	}

	var sums []float64
	var counts []int
	var pendingPts float64
	havePts := false

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if m := rePtsTime.FindStringSubmatch(line); m != nil {
			pendingPts = parseFloat(m[1])
			havePts = true
			continue
		}
		if m := reRMSLevel.FindStringSubmatch(line); m != nil && havePts {
			db := parseDB(m[1])
			idx := int(pendingPts / windowS)
			for len(sums) <= idx {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[idx] += db
			counts[idx]++
			havePts = false
		}
	}
	_ = cmd.Wait()

	out := make([]float64, len(sums))
	for i := range sums {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		} else {
			out[i] = -60
		}
	}
	return out, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseDB(s string) float64 {
	if s == "-inf" {
		return -90
	}
	return parseFloat(s)
}

package gate

import "math"

// TrimSilence drops leading and trailing frames whose RMS is below threshold.
// It returns a subslice of samples; if every frame is silent it returns samples
// unchanged so the recognizer still decides.
func TrimSilence(samples []float32, frameLen int, threshold float64) []float32 {
	if frameLen <= 0 || len(samples) <= frameLen {
		return samples
	}
	frames := (len(samples) + frameLen - 1) / frameLen
	first, last := -1, -1
	for i := 0; i < frames; i++ {
		if rms(frameAt(samples, i, frameLen)) >= threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return samples
	}
	// keep one frame of context on each side
	if first > 0 {
		first--
	}
	if last < frames-1 {
		last++
	}
	end := (last + 1) * frameLen
	if end > len(samples) {
		end = len(samples)
	}
	return samples[first*frameLen : end]
}

func frameAt(samples []float32, i, frameLen int) []float32 {
	start := i * frameLen
	end := start + frameLen
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end]
}

func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}

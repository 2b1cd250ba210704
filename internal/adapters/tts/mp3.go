package tts

// Layer III bitrate and sampling tables, indexed by the header fields.
var (
	mpeg1Bitrates    = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	mpeg2Bitrates    = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
	mpeg1Samplerates = [3]int{44100, 48000, 32000}
	mpeg2Samplerates = [3]int{22050, 24000, 16000}
	mpeg25Samplerate = [3]int{11025, 12000, 8000}
)

// MP3Duration computes the play time of an MPEG audio stream by walking
// its frame headers. Returns nil when the stream yields no parsable frame;
// the feed then reports the duration as unknown instead of wrong.
func MP3Duration(data []byte) *int64 {
	var seconds float64
	frames := 0
	i := 0

	// Skip a leading ID3v2 tag.
	if len(data) >= 10 && data[0] == 'I' && data[1] == 'D' && data[2] == '3' {
		size := int(data[6]&0x7f)<<21 | int(data[7]&0x7f)<<14 | int(data[8]&0x7f)<<7 | int(data[9]&0x7f)
		i = 10 + size
	}

	for i >= 0 && i+4 <= len(data) {
		length, duration := parseFrame(data[i], data[i+1], data[i+2])
		if length == 0 {
			i++
			continue
		}
		seconds += duration
		frames++
		i += length
	}

	if frames == 0 {
		return nil
	}
	rounded := int64(seconds + 0.5)
	return &rounded
}

// parseFrame reads one Layer III frame header, returning the frame length
// in bytes and its play time. A zero length means no valid frame starts
// here.
func parseFrame(b0, b1, b2 byte) (int, float64) {
	if b0 != 0xff || b1&0xe0 != 0xe0 {
		return 0, 0
	}
	version := (b1 >> 3) & 0x03
	layer := (b1 >> 1) & 0x03
	if version == 1 || layer != 1 {
		return 0, 0
	}
	bitrateIdx := b2 >> 4
	samplerateIdx := (b2 >> 2) & 0x03
	padding := int(b2 >> 1 & 0x01)
	if bitrateIdx == 0 || bitrateIdx == 15 || samplerateIdx == 3 {
		return 0, 0
	}

	var bitrate, samplerate, samples, factor int
	switch version {
	case 3: // MPEG 1
		bitrate = mpeg1Bitrates[bitrateIdx] * 1000
		samplerate = mpeg1Samplerates[samplerateIdx]
		samples = 1152
		factor = 144
	case 2: // MPEG 2
		bitrate = mpeg2Bitrates[bitrateIdx] * 1000
		samplerate = mpeg2Samplerates[samplerateIdx]
		samples = 576
		factor = 72
	default: // MPEG 2.5
		bitrate = mpeg2Bitrates[bitrateIdx] * 1000
		samplerate = mpeg25Samplerate[samplerateIdx]
		samples = 576
		factor = 72
	}

	length := factor*bitrate/samplerate + padding
	if length < 4 {
		return 0, 0
	}
	return length, float64(samples) / float64(samplerate)
}

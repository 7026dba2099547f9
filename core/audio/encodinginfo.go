package audio

const (
	// DefaultSampleRate matches the rate the remote live endpoint expects for
	// inbound microphone audio.
	DefaultSampleRate = 16000
	// DefaultPlaybackSampleRate is the rate of model audio coming back.
	DefaultPlaybackSampleRate = 24000
	DefaultChannels           = 1
	DefaultFormat             = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Channels: DefaultChannels, Format: encodingFormat(DefaultFormat)}
}

func GetDefaultPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultPlaybackSampleRate, Channels: DefaultChannels, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond returns the raw PCM byte rate for this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	return e.SampleRate * e.Format.ByteSize() * channels
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)

//go:build cgo

// Package portaudio is an alternative duplex audio client for environments
// where miniaudio is unavailable. It uses blocking stream reads/writes driven
// by background goroutines instead of device callbacks.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/klaramir/livesession/core/audio"
)

type Client struct {
	bufferSize int

	mu        sync.Mutex
	inStream  *portaudio.Stream
	outStream *portaudio.Stream
	in        []int16
	out       []int16

	captureStop  chan struct{}
	playbackStop chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Client{bufferSize: bufferSize}, nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inStream != nil {
		return nil
	}

	in := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(audio.DefaultChannels, 0, audio.DefaultSampleRate, c.bufferSize, in)
	if err != nil {
		return fmt.Errorf("failed to open PortAudio input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start PortAudio input stream: %w", err)
	}

	c.in = in
	c.inStream = stream
	c.captureStop = make(chan struct{})
	stop := c.captureStop

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				log.Printf("Failed to read from PortAudio stream: %v", err)
				continue
			}

			audioBuffer := bytes.Buffer{}
			binary.Write(&audioBuffer, binary.LittleEndian, in)
			onAudio(audioBuffer.Bytes())
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inStream == nil {
		return nil
	}

	close(c.captureStop)
	if err := c.inStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio input stream: %w", err)
	}
	c.inStream.Close()
	c.inStream = nil
	return nil
}

// StartPlayback repeatedly asks fill for one output buffer worth of PCM and
// writes it to the default output device. fill must not block; it zero-pads
// when no audio is queued.
func (c *Client) StartPlayback(ctx context.Context, fill func(out []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outStream != nil {
		return nil
	}
	if fill == nil {
		return fmt.Errorf("fill function is required")
	}

	out := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, audio.DefaultChannels, audio.DefaultPlaybackSampleRate, c.bufferSize, out)
	if err != nil {
		return fmt.Errorf("failed to open PortAudio output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start PortAudio output stream: %w", err)
	}

	c.out = out
	c.outStream = stream
	c.playbackStop = make(chan struct{})
	stop := c.playbackStop

	go func() {
		silence := c.PlaybackEncodingInfo().SilenceValue()
		raw := make([]byte, c.bufferSize*2)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
			}

			for i := range raw {
				raw[i] = silence
			}
			fill(raw)
			binary.Read(bytes.NewReader(raw), binary.LittleEndian, out)
			if err := stream.Write(); err != nil {
				log.Printf("Failed to write to PortAudio stream: %v", err)
			}
		}
	}()

	return nil
}

func (c *Client) StopPlayback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outStream == nil {
		return nil
	}

	close(c.playbackStop)
	if err := c.outStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio output stream: %w", err)
	}
	c.outStream.Close()
	c.outStream = nil
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = c.StopPlayback()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultPlaybackEncodingInfo()
}

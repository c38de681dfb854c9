package engine

import "errors"

var (
	// ErrUnsupportedSampleRate is returned by Prepare for rates outside
	// MinSampleRate..MaxSampleRate.
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")
	// ErrUnsupportedBlockSize is returned by Prepare for block sizes outside
	// 1..MaxBlockSize.
	ErrUnsupportedBlockSize = errors.New("unsupported block size")
	// ErrUnsupportedChannels is returned by Prepare for anything but mono or
	// stereo output.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
)

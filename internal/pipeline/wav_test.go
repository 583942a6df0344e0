package pipeline

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCM16ToWAV(t *testing.T) {
	pcm := make([]byte, 4800)
	for i := range pcm {
		pcm[i] = byte(i)
	}

	wav := PCM16ToWAV(pcm, 24000, 1)

	require.Len(t, wav, wavHeaderSize+len(pcm))

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[28:32]), "byte rate is rate*blockAlign")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))

	assert.Equal(t, pcm, wav[wavHeaderSize:], "sample bytes are copied unmodified")
}

func TestPCM16ToWAV_EmptyPayload(t *testing.T) {
	wav := PCM16ToWAV(nil, 44100, 2)
	require.Len(t, wav, wavHeaderSize)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, uint32(44100*4), binary.LittleEndian.Uint32(wav[28:32]))
}

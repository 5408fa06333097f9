package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"StockX/internal/domain/models"

	"github.com/vmihailenco/msgpack/v5"
)

const artifactVersion = 1

// artifactEnvelope wraps the encoded model with a format version and a
// checksum of the payload, so truncated or tampered files are detected
// before any weights are loaded.
type artifactEnvelope struct {
	Version  int    `msgpack:"v"`
	Checksum string `msgpack:"sha256"`
	Payload  []byte `msgpack:"payload"`
}

// EncodeArtifact serializes m into the on-disk artifact format.
func EncodeArtifact(m *models.TrainedModel) ([]byte, error) {
	if m == nil {
		return nil, errors.New("encode artifact: nil model")
	}
	payload, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	sum := sha256.Sum256(payload)
	return msgpack.Marshal(&artifactEnvelope{
		Version:  artifactVersion,
		Checksum: hex.EncodeToString(sum[:]),
		Payload:  payload,
	})
}

// DecodeArtifact parses data written by EncodeArtifact. Every failure is a
// CorruptArtifact error for symbol.
func DecodeArtifact(symbol string, data []byte) (*models.TrainedModel, error) {
	var env artifactEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, models.CorruptArtifact(symbol, err)
	}
	if env.Version != artifactVersion {
		return nil, models.CorruptArtifact(symbol, fmt.Errorf("unsupported artifact version %d", env.Version))
	}
	sum := sha256.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, models.CorruptArtifact(symbol, errors.New("checksum mismatch"))
	}

	var m models.TrainedModel
	if err := msgpack.Unmarshal(env.Payload, &m); err != nil {
		return nil, models.CorruptArtifact(symbol, err)
	}
	if err := validateModel(&m); err != nil {
		return nil, models.CorruptArtifact(symbol, err)
	}
	return &m, nil
}

func validateModel(m *models.TrainedModel) error {
	if m.Symbol == "" {
		return errors.New("missing symbol")
	}
	if !(m.Scaling.Max > m.Scaling.Min) {
		return fmt.Errorf("invalid scaling [%v, %v]", m.Scaling.Min, m.Scaling.Max)
	}
	if len(m.Weights.Tensors) == 0 {
		return errors.New("no weights")
	}
	for _, t := range m.Weights.Tensors {
		if t.Rows <= 0 || t.Cols <= 0 || len(t.Data) != t.Rows*t.Cols {
			return fmt.Errorf("tensor %s: shape %dx%d does not match %d values", t.Name, t.Rows, t.Cols, len(t.Data))
		}
	}
	return nil
}

package domain

import (
	"fmt"
	"strings"
)

// Modality names an embedding space. All modalities share one dimension.
type Modality string

// Supported modalities.
const (
	ModalityText     Modality = "text"
	ModalityProtein  Modality = "protein"
	ModalityMolecule Modality = "molecule"
)

// DefaultDimensions is the vector size shared by every modality.
const DefaultDimensions = 384

// AllModalities returns the supported modalities in a stable order.
func AllModalities() []Modality {
	return []Modality{ModalityText, ModalityProtein, ModalityMolecule}
}

// ParseModality converts a string into a Modality.
// An empty string maps to ModalityText. The legacy "smiles" alias maps to molecule.
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return ModalityText, nil
	case "protein":
		return ModalityProtein, nil
	case "molecule", "smiles":
		return ModalityMolecule, nil
	default:
		return "", fmt.Errorf("%w: unknown modality %q", ErrInvalidInput, s)
	}
}

// Valid reports whether m is one of the supported modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityText, ModalityProtein, ModalityMolecule:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (m Modality) String() string {
	return string(m)
}

// Package biometric describes the physiological quantities read from the host
// data store and the contract that store must satisfy.
package biometric

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind identifies one physiological quantity tracked as a time series.
type Kind string

const (
	Height                 Kind = "height"
	BodyMass               Kind = "body_mass"
	StepCount              Kind = "step_count"
	HeartRate              Kind = "heart_rate"
	DistanceWalkingRunning Kind = "distance_walking_running"
	ActiveEnergyBurned     Kind = "active_energy_burned"
)

// RequiredKinds are the quantities fetched for every calorie prediction.
// Active energy is known to the store but no longer part of the model input.
var RequiredKinds = []Kind{Height, BodyMass, StepCount, HeartRate, DistanceWalkingRunning}

// CanonicalUnit returns the unit every sample of k is converted into.
func (k Kind) CanonicalUnit() (Unit, error) {
	switch k {
	case Height, DistanceWalkingRunning:
		return Meter, nil
	case BodyMass:
		return Kilogram, nil
	case StepCount:
		return Count, nil
	case HeartRate:
		return CountPerMinute, nil
	case ActiveEnergyBurned:
		return Kilocalorie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// ParseKind validates a stored kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, err := k.CanonicalUnit(); err != nil {
		return "", err
	}
	return k, nil
}

// DataType is an authorization identifier understood by the host store.
type DataType string

const (
	BiologicalSexType DataType = "characteristic:biological_sex"
	DateOfBirthType   DataType = "characteristic:date_of_birth"
)

// QuantityType returns the authorization identifier of a quantity kind.
func QuantityType(k Kind) DataType {
	return DataType("quantity:" + string(k))
}

// RequiredDataTypes lists what a calorie prediction needs read access to.
func RequiredDataTypes() []DataType {
	types := []DataType{BiologicalSexType, DateOfBirthType}
	for _, k := range RequiredKinds {
		types = append(types, QuantityType(k))
	}
	return types
}

// SortOrder of a sample query.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// SampleRequest asks for the most recent sample of one kind.
type SampleRequest struct {
	Kind  Kind
	Unit  Unit
	Limit int
	Order SortOrder
}

// NewSampleRequest builds the single most-recent-sample query for k in its canonical unit.
func NewSampleRequest(k Kind) (SampleRequest, error) {
	u, err := k.CanonicalUnit()
	if err != nil {
		return SampleRequest{}, err
	}
	return SampleRequest{Kind: k, Unit: u, Limit: 1, Order: Descending}, nil
}

// SampleResult is the outcome of one fetch: a value or an absence.
type SampleResult struct {
	Kind  Kind
	Value float64
	OK    bool
	Err   error
}

// Present returns a successful result.
func Present(k Kind, v float64) SampleResult {
	return SampleResult{Kind: k, Value: v, OK: true}
}

// Absent returns a result with no value. err explains why and is always
// wrapped with ErrSampleUnavailable.
func Absent(k Kind, err error) SampleResult {
	if err == nil {
		err = fmt.Errorf("%w: %s: no data available", ErrSampleUnavailable, k)
	} else {
		err = fmt.Errorf("%w: %s: %w", ErrSampleUnavailable, k, err)
	}
	return SampleResult{Kind: k, Err: err}
}

// Sex is the biological sex characteristic.
type Sex int

const (
	SexNotSet Sex = iota
	Male
	Female
)

// Feature encodes sex the way both models were trained: male 0, female 1.
func (s Sex) Feature() (float64, bool) {
	switch s {
	case Male:
		return 0, true
	case Female:
		return 1, true
	default:
		return 0, false
	}
}

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "not_set"
	}
}

// ParseSex accepts "male"/"female" in any case, and "" or "not_set" for unset.
func ParseSex(s string) (Sex, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "male"):
		return Male, nil
	case strings.EqualFold(s, "female"):
		return Female, nil
	case s == "", strings.EqualFold(s, "not_set"):
		return SexNotSet, nil
	default:
		return SexNotSet, fmt.Errorf("unknown sex %q", s)
	}
}

// Characteristics are the non time-series facts about the subject.
type Characteristics struct {
	Sex         Sex
	DateOfBirth time.Time
}

// HostStore is the read side of the host biometric data store.
type HostStore interface {
	// RequestAuthorization asks once for read access to every type.
	RequestAuthorization(ctx context.Context, types []DataType) (bool, error)
	// MostRecentSample returns the newest sample converted into req.Unit.
	// ok is false when the store holds no sample of that kind.
	MostRecentSample(ctx context.Context, req SampleRequest) (value float64, ok bool, err error)
	// Characteristics returns sex and date of birth.
	Characteristics(ctx context.Context) (Characteristics, error)
}

package healthstore

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/pkg/logger"
)

// Seed grants every required type to subject and writes a small history of
// samples whose latest values are a complete, plausible profile. Older rows
// use other units so that conversion is exercised on read.
func (d *DB) Seed(ctx context.Context, subject string, now time.Time) error {
	if err := d.Grant(ctx, subject, biometric.RequiredDataTypes()...); err != nil {
		return err
	}
	if err := d.SetCharacteristics(ctx, subject, biometric.Characteristics{
		Sex:         biometric.Female,
		DateOfBirth: now.AddDate(-30, 0, -1),
	}); err != nil {
		return err
	}

	yesterday := now.Add(-24 * time.Hour)
	samples := []Sample{
		{Kind: biometric.Height, Value: 179, Unit: biometric.Centimeter, StartAt: yesterday},
		{Kind: biometric.Height, Value: 1.8, Unit: biometric.Meter, StartAt: now},
		{Kind: biometric.BodyMass, Value: 180, Unit: biometric.Pound, StartAt: yesterday},
		{Kind: biometric.BodyMass, Value: 80, Unit: biometric.Kilogram, StartAt: now},
		{Kind: biometric.StepCount, Value: 7500, Unit: biometric.Count, StartAt: yesterday},
		{Kind: biometric.StepCount, Value: 10000, Unit: biometric.Count, StartAt: now},
		{Kind: biometric.HeartRate, Value: 64, Unit: biometric.CountPerMinute, StartAt: yesterday},
		{Kind: biometric.HeartRate, Value: 70, Unit: biometric.CountPerMinute, StartAt: now},
		{Kind: biometric.DistanceWalkingRunning, Value: 5.5, Unit: biometric.Kilometer, StartAt: yesterday},
		{Kind: biometric.DistanceWalkingRunning, Value: 8000, Unit: biometric.Meter, StartAt: now},
		{Kind: biometric.ActiveEnergyBurned, Value: 420, Unit: biometric.Kilocalorie, StartAt: now},
	}
	for _, s := range samples {
		if err := d.AddSample(ctx, subject, s); err != nil {
			return fmt.Errorf("seed %s: %w", subject, err)
		}
	}

	d.logger.Info(ctx, "seeded subject",
		logger.String("subject", subject),
		logger.Int("samples", len(samples)),
	)
	return nil
}

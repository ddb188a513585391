package walkforward

// GeneratePeriods creates the ordered training/testing windows for cfg.
//
// Every mode advances the same way: the training window is
// [cursor, cursor+training] and the testing window starts the day after training ends.
// Expanding windows therefore do not grow yet; that is a known simplification.
// A range too short for one period yields an empty slice, not an error.
//
// A period is kept while cursor+training+testing days is not after TotalEnd. Because
// testing starts one day after training ends, the last TestingEnd may fall one day
// after TotalEnd.
func GeneratePeriods(cfg Config) ([]Period, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var periods []Period

	cursor := cfg.TotalStart
	for !cursor.AddDate(0, 0, cfg.TrainingDurationDays+cfg.TestingDurationDays).After(cfg.TotalEnd) {
		trainingEnd := cursor.AddDate(0, 0, cfg.TrainingDurationDays)
		testingStart := trainingEnd.AddDate(0, 0, 1)

		periods = append(periods, Period{
			ID:            len(periods),
			TrainingStart: cursor,
			TrainingEnd:   trainingEnd,
			TestingStart:  testingStart,
			TestingEnd:    testingStart.AddDate(0, 0, cfg.TestingDurationDays),
			Mode:          cfg.Mode,
		})

		cursor = cursor.AddDate(0, 0, cfg.StepSizeDays)
	}

	return periods, nil
}

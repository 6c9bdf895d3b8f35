package iterator

import "storevec/pkg/tuple"

// Iterate is a generic helper function that encapsulates the common pull loop.
// It stops at end of scan and skips nil tuples.
// The processFunc receives each tuple and can control iteration flow:
// - Return (false, nil) to stop iteration early
// - Return (true, nil) to continue
// - Return (_, error) to stop with error
func Iterate(src Source, processFunc func(*tuple.Tuple) (continueLooping bool, err error)) error {
	for {
		res, err := src.Next()
		if err != nil {
			return err
		}
		if res.Done() {
			return nil
		}

		tup := res.Tuple()
		if tup == nil {
			continue
		}

		shouldContinue, err := processFunc(tup)
		if err != nil {
			return err
		}
		if !shouldContinue {
			return nil
		}
	}
}

// ForEach applies a processing function to each tuple in the source.
// The iteration stops early if processFunc returns an error.
func ForEach(src Source, processFunc func(*tuple.Tuple) error) error {
	return Iterate(src, func(tup *tuple.Tuple) (bool, error) {
		err := processFunc(tup)
		return true, err
	})
}

// Take returns up to n tuples from the source.
// If the source has fewer than n tuples, all available tuples are returned.
func Take(src Source, n int) ([]*tuple.Tuple, error) {
	if n <= 0 {
		return nil, nil
	}
	tuples := make([]*tuple.Tuple, 0, n)

	err := Iterate(src, func(tup *tuple.Tuple) (bool, error) {
		tuples = append(tuples, tup)
		return len(tuples) < n, nil
	})

	return tuples, err
}

// Reduce accumulates a value by applying a function to each tuple.
func Reduce[T any](src Source, initial T, accumulator func(T, *tuple.Tuple) (T, error)) (T, error) {
	result := initial

	err := Iterate(src, func(tup *tuple.Tuple) (bool, error) {
		var err error
		result, err = accumulator(result, tup)
		return true, err
	})

	return result, err
}

// Count returns the total number of tuples in the source.
// Note: This drains the source.
func Count(src Source) (int, error) {
	return Reduce(src, 0, func(count int, _ *tuple.Tuple) (int, error) {
		return count + 1, nil
	})
}

// Collect returns all tuples from the source as a slice.
// Note: This drains the source and holds every tuple in memory.
func Collect(src Source) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple

	err := Iterate(src, func(tup *tuple.Tuple) (bool, error) {
		results = append(results, tup)
		return true, nil
	})

	return results, err
}

package filter

import "github.com/corvidlabs/tbot/event"

// Not negates f.
func Not(f Filter) Filter {
	return func(payload event.Payload) (bool, error) {
		ok, err := f(payload)

		return !ok, err
	}
}

// Any is truthy iff at least one of fs is truthy. Evaluation stops at the first truthy filter.
func Any(fs ...Filter) Filter {
	return func(payload event.Payload) (bool, error) {
		for _, f := range fs {
			ok, err := f(payload)
			if err != nil {
				return false, err
			}

			if ok {
				return true, nil
			}
		}

		return false, nil
	}
}

// All is truthy iff every one of fs is truthy. Evaluation stops at the first falsy filter.
func All(fs ...Filter) Filter {
	return func(payload event.Payload) (bool, error) {
		for _, f := range fs {
			ok, err := f(payload)
			if err != nil {
				return false, err
			}

			if !ok {
				return false, nil
			}
		}

		return true, nil
	}
}

// None is truthy iff no fs is truthy.
func None(fs ...Filter) Filter {
	any := Any(fs...)

	return func(payload event.Payload) (bool, error) {
		ok, err := any(payload)

		return !ok, err
	}
}

// Xor is truthy iff exactly one of fs is truthy. All fs are evaluated; the first error aborts.
func Xor(fs ...Filter) Filter {
	return func(payload event.Payload) (bool, error) {
		truthy := 0

		for _, f := range fs {
			ok, err := f(payload)
			if err != nil {
				return false, err
			}

			if ok {
				truthy++
			}
		}

		return truthy == 1, nil
	}
}

//go:build !linux && !darwin

package root

func prepareHelper() error {
	return nil
}

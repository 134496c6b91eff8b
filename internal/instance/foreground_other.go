//go:build !windows

package instance

import "context"

type platformForegrounder struct{}

func (platformForegrounder) Foreground(context.Context, int32) error {
	return ErrForegroundUnsupported
}

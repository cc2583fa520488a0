//go:build !ffmpeg_embedded

package ffmpeg

import "io"

// without the ffmpeg_embedded tag the bundle is downloaded on first use
func openEmbeddedAsset(string) (io.ReadCloser, bool, error) {
	return nil, false, nil
}

package rda

import "log"

const debugCodec = false

func debugf(msg string, args ...any) {
	if !debugCodec {
		return
	}
	log.Printf(msg, args...)
}

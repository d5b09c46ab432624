package task

import "errors"

// ErrEpisodeDone episode已结束，需要Reset后才能继续Tick
var ErrEpisodeDone = errors.New("episode is done")

// Package video adapts frame sequences to the lane pipeline.
//
// A Source yields decoded frames in order and returns io.EOF at the end. Two
// sources exist: DirSource reads a directory of still images, and
// CaptureSource (built with -tags gocv) decodes a video file through OpenCV.
// DirSink writes annotated frames back out as PNG files.
package video

/*
go-liveocr detects text in live video frames and draws the results back onto
them.  Each frame is converted to an inverted Otsu binary image, handed to a
text Detector such as the Tesseract backed one in the tesseract subdirectory,
filtered by confidence and annotated with bounding boxes and labels.

A Pipeline annotates single frames, snapshots or uploaded images.  A Stream
feeds frames from a camera or video through a Pipeline one at a time, keeping
at most one frame waiting so annotation never falls behind the source.  The
box and label style can be changed while streaming through a StyleStore, the
next frame picks up the change.

See the liveocr command in the example subdirectory for usage.
*/
package liveocr

package preprocess

import (
	"gocv.io/x/gocv"
	"image"
	"testing"
)

func TestScalerFactor(t *testing.T) {

	tests := []struct {
		minHeight int
		maxFactor float64
		height    int
		expected  float64
	}{
		{0, 4, 100, 1},
		{480, 4, 720, 1},
		{480, 4, 480, 1},
		{480, 4, 240, 2},
		{480, 2, 120, 2},
		{480, 0.5, 240, 1},
	}

	for _, tc := range tests {
		s := NewScaler(tc.minHeight, tc.maxFactor)

		if got := s.Factor(tc.height); got != tc.expected {
			t.Errorf("Factor(%d) with minHeight=%d maxFactor=%.1f = %f, expected %f",
				tc.height, tc.minHeight, tc.maxFactor, got, tc.expected)
		}
	}
}

func TestScalerScale(t *testing.T) {

	src := gocv.NewMatWithSize(50, 80, gocv.MatTypeCV8UC1)
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	s := NewScaler(100, 4)
	factor := s.Scale(src, &dst)

	if factor != 2 {
		t.Fatalf("expected factor 2, got %f", factor)
	}

	if dst.Rows() != 100 || dst.Cols() != 160 {
		t.Errorf("expected 160x100 scaled image, got %dx%d", dst.Cols(), dst.Rows())
	}

	untouched := gocv.NewMat()
	defer untouched.Close()

	if f := NewScaler(0, 4).Scale(src, &untouched); f != 1 || !untouched.Empty() {
		t.Errorf("disabled scaler should not write dst, factor=%f", f)
	}
}

func TestMapRect(t *testing.T) {

	r := MapRect(image.Rect(20, 41, 61, 80), 2)
	expected := image.Rect(10, 20, 31, 40)

	if r != expected {
		t.Errorf("MapRect() = %v, expected %v", r, expected)
	}

	if r := MapRect(expected, 1); r != expected {
		t.Errorf("factor 1 should not change rect, got %v", r)
	}
}

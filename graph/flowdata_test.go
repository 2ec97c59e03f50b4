package graph

import "testing"

func TestFlowKindStringRoundTrip(t *testing.T) {
	for k := KindInvalid; k <= KindDeviceArray; k++ {
		s := k.String()
		if got := ParseFlowKind(s); got != k {
			t.Errorf("ParseFlowKind(%q) = %v, want %v", s, got, k)
		}
	}
	if ParseFlowKind("nonsense") != KindInvalid {
		t.Errorf("ParseFlowKind(unknown) should return KindInvalid")
	}
}

func TestConvertibleToImageChannels(t *testing.T) {
	mono := FlowData{Kind: KindImage, Image: Image{Channels: 1}}
	if !mono.ConvertibleTo(KindImageMono) {
		t.Errorf("1-channel Image should convert to ImageMono")
	}
	if mono.ConvertibleTo(KindImageRgb) {
		t.Errorf("1-channel Image should not convert to ImageRgb")
	}

	rgb := FlowData{Kind: KindImage, Image: Image{Channels: 3}}
	if !rgb.ConvertibleTo(KindImageRgb) {
		t.Errorf("3-channel Image should convert to ImageRgb")
	}

	if !(FlowData{Kind: KindImageMono}).ConvertibleTo(KindImageMono) {
		t.Errorf("a kind should always be convertible to itself")
	}
	if (FlowData{Kind: KindArray}).ConvertibleTo(KindImage) {
		t.Errorf("unrelated kinds should not convert")
	}
}

func TestConvertibleToDeviceElementSize(t *testing.T) {
	mono := FlowData{Kind: KindDeviceImage, DeviceArray: DeviceArray{ElementSize: 1}}
	if !mono.ConvertibleTo(KindDeviceImageMono) {
		t.Errorf("1-byte-element DeviceImage should convert to DeviceImageMono")
	}
	rgba := FlowData{Kind: KindDeviceImage, DeviceArray: DeviceArray{ElementSize: 4}}
	if !rgba.ConvertibleTo(KindDeviceImageRgb) {
		t.Errorf("4-byte-element DeviceImage should convert to DeviceImageRgb")
	}
	if rgba.ConvertibleTo(KindDeviceImageMono) {
		t.Errorf("4-byte-element DeviceImage should not convert to DeviceImageMono")
	}
}

func TestKindConvertibleStaticCheck(t *testing.T) {
	if !KindConvertible(KindImage, KindImageMono) {
		t.Errorf("KindConvertible should allow Image -> ImageMono regardless of channel count")
	}
	if KindConvertible(KindImageMono, KindArray) {
		t.Errorf("unrelated declared kinds should not be statically convertible")
	}
}

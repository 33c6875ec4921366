package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/envroute/envroute/internal/geo"
)

func TestNormalizeZoneName_VietnameseDiacritics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ward with full diacritics", "Phường Hoàn Kiếm", "PhuongHoanKiem"},
		{"d with stroke", "Quận Đống Đa", "QuanDongDa"},
		{"lowercase d with stroke", "Thị trấn Đông Anh", "ThiTranDongAnh"},
		{"already ascii", "Long Bien", "LongBien"},
		{"mixed case input", "phường TRÚC bạch", "PhuongTrucBach"},
		{"punctuation as word break", "Cầu Giấy - Khu 2", "CauGiayKhu2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geo.NormalizeZoneName(tt.in))
		})
	}
}

func TestNormalizeZoneName_Deterministic(t *testing.T) {
	in := "Phường Quán Thánh"
	first := geo.NormalizeZoneName(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, geo.NormalizeZoneName(in))
	}
}

package entity

// Region は検出領域（左上・右下の座標）です。
// Normalizedがtrueの場合、座標は画像サイズに対する0〜1の比率です。
type Region struct {
	X1, Y1, X2, Y2 float64
	Normalized     bool
}

// RawDetection は検出器が1オブジェクトごとに返す生の検出結果です。
type RawDetection struct {
	ClassID    int     // 検出器固有のクラスID
	Confidence float64 // 信頼度スコア（0.0 ~ 1.0）
	Region     *Region // 検出領域（任意）
}

// DetectionBatch は1回の推論で得られた検出結果と、その検出器が持つクラスID→クラス名の対応表です。
type DetectionBatch struct {
	Detections []RawDetection
	ClassNames map[int]string
}

// NormalizedDetection はクラスキーに解決され、しきい値を通過した検出結果です。
type NormalizedDetection struct {
	ClassKey   string
	Confidence float64
}

// Image はデコード・縮小済みで検出器に渡される画像です。
type Image struct {
	Data     []byte // エンコード済み画像バイト列
	MIMEType string // 例: "image/jpeg"
	Width    int
	Height   int
}

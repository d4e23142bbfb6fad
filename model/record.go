package model

// ImageWithMask 图片、逐像素对象掩码及每个对象的类别
//
// Img 单通道为 (H, W)，多通道为 (H, W, colors)
// Mask 为 (H, W)，取值为 [0, len(ObjectClass)) 内的对象ID
// ObjectClass 按对象ID索引
type ImageWithMask struct {
	Img         *Array `json:"img"`
	Mask        *Array `json:"mask"`
	ObjectClass []int  `json:"object_class"`
}

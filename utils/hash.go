package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// FileMD5 计算文件MD5
func FileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// PayloadMD5 计算多段字节数据的MD5
// 每段前加长度前缀，("ab","c") 与 ("a","bc") 结果不同
func PayloadMD5(kind string, parts ...[]byte) string {
	hash := md5.New()
	hash.Write([]byte(kind))
	for _, p := range parts {
		var n [8]byte
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		hash.Write(n[:])
		hash.Write(p)
	}
	return hex.EncodeToString(hash.Sum(nil))
}

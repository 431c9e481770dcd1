package synth

var assetPrefix = []byte("synth/asset/")

func assetKey(symbol string) []byte {
	return append(append([]byte(nil), assetPrefix...), normalizeSymbol(symbol)...)
}

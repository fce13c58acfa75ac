package mech

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/teranos/mechrelay/errors"
)

// LoadSender reads the hex private key at path and returns the address the
// mech client will send requests from. The key itself never leaves this function.
func LoadSender(path string) (common.Address, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Address{}, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "read key file %s", path), errors.ErrKeyFile),
			"set mech.private_key_path to a file holding the hex-encoded key")
	}

	hexKey := strings.TrimSpace(string(data))
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	if hexKey == "" {
		return common.Address{}, errors.Mark(errors.Newf("key file %s is empty", path), errors.ErrKeyFile)
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// The underlying error can echo key material, keep it out of the message
		return common.Address{}, errors.Mark(errors.Newf("key file %s does not hold a valid secp256k1 private key", path), errors.ErrKeyFile)
	}

	return crypto.PubkeyToAddress(key.PublicKey), nil
}

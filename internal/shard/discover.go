package shard

import (
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DiscoverTotal finds the id of the last shard in dir by probing names built
// from n, doubling the id until a shard is absent and then bisecting. Shards
// must be contiguous from 1.
func DiscoverTotal(dir string, n Naming) (int, error) {
	exists := func(id int) (bool, error) {
		_, err := os.Stat(n.Path(dir, id))
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", n.NameOf(id))
	}

	ok, err := exists(1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &ShardMissingError{Name: n.NameOf(1), Err: os.ErrNotExist}
	}

	// lo always exists, hi never does.
	lo, hi := 1, 2
	for {
		ok, err := exists(hi)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		lo, hi = hi, hi*2
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		ok, err := exists(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}

	glog.V(1).Infof("discovered %d shards in %s", lo, dir)
	return lo, nil
}

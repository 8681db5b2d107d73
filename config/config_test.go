/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
)

const testconf = "testconfig"

func TestConfig(t *testing.T) {
	Config = nil

	ioutil.WriteFile(testconf, []byte(`{
    "ThreadCount": 8
}`), 0644)

	defer func() {
		if err := os.Remove(testconf); err != nil {
			fmt.Print("could not remove test config file:", err.Error())
		}
	}()

	if err := LoadConfigFile(testconf); err != nil {
		t.Error(err)
		return
	}

	if res := Int(ThreadCount); res != 8 {
		t.Error("unexpected result:", res)
		return
	}

	if res := Int(CacheSize); fmt.Sprint(res) != fmt.Sprint(DefaultConfig[CacheSize]) {
		t.Error("unexpected result:", res)
		return
	}

	LoadDefaultConfig()

	if res := Int(ThreadCount); fmt.Sprint(res) != fmt.Sprint(DefaultConfig[ThreadCount]) {
		t.Error("unexpected result:", res)
		return
	}

	Config[TimeoutMaxMs] = "123"

	if res := Int(TimeoutMaxMs); fmt.Sprint(res) == fmt.Sprint(DefaultConfig[TimeoutMaxMs]) {
		t.Error("unexpected result:", res)
		return
	}
}

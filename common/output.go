/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package common

import (
	"bytes"
	"io"
	"os"

	"github.com/holocm/holo-pkg/internal/berror"
)

// WriteOutput writes pkgBytes to pkgFile, or to stdout if pkgFile is "-".
// Unless withForce is set, an existing file is left untouched when its
// content already matches pkgBytes, and rejected with OutputFileExists
// when it doesn't.
func WriteOutput(pkgBytes []byte, pkgFile string, withForce bool) (wasWritten bool, err error) {
	if pkgFile == "-" {
		if _, err := os.Stdout.Write(pkgBytes); err != nil {
			return false, berror.OutputWriteFailed(pkgFile, err)
		}
		return false, nil
	}

	if !withForce {
		fileHandle, err := os.Open(pkgFile)
		if err == nil {
			defer fileHandle.Close()
			equal, err := readerEqualTo(fileHandle, pkgBytes)
			if err != nil {
				return false, berror.OutputWriteFailed(pkgFile, err)
			}
			if equal {
				return false, nil
			}
			return false, berror.OutputFileExists(pkgFile)
		}
		if !os.IsNotExist(err) {
			return false, berror.OutputWriteFailed(pkgFile, err)
		}
	}

	if err := os.WriteFile(pkgFile, pkgBytes, 0666); err != nil {
		return false, berror.OutputWriteFailed(pkgFile, err)
	}
	return true, nil
}

func readerEqualTo(r io.Reader, str []byte) (bool, error) {
	buf := make([]byte, len(str))
	_, err := io.ReadFull(r, buf)
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return false, nil
	case nil:
		if !bytes.Equal(buf, str) {
			return false, nil
		}
	default:
		return false, err
	}

	// the file only matches if nothing follows the compared bytes
	_, err = io.ReadFull(r, make([]byte, 1))
	switch err {
	case io.EOF:
		return true, nil
	case nil:
		return false, nil
	default:
		return false, err
	}
}
